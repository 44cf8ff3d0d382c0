// Package fetch retrieves ChordPro sources and the metadata catalog from the
// JEMAF site.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bricedupuy/chordshow/core/errors"
	"github.com/bricedupuy/chordshow/core/meta"
	"github.com/bricedupuy/chordshow/internal/logging"
)

var (
	chordproLink = regexp.MustCompile(`href="([^"]+\.chordpro)"`)
	jemNumber    = regexp.MustCompile(`jem(\d+)`)
	jemkNumber   = regexp.MustCompile(`jemk(\d+)`)
	zeroSuffix   = regexp.MustCompile(`_0\.chordpro$`)
	jemPrefix    = regexp.MustCompile(`^jem(\d+)`)
)

// Client downloads songbook resources over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	catalogURL string
}

// NewClient builds a client for the given song listing and catalog URLs.
func NewClient(baseURL, catalogURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		catalogURL: catalogURL,
	}
}

// ListSongs scrapes the directory listing for .chordpro links, sorted
// numerically with jem files first, jemk files second, and everything else
// last in scrape order.
func (c *Client) ListSongs(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range chordproLink.FindAllStringSubmatch(string(body), -1) {
		files = append(files, m[1])
	}

	sort.SliceStable(files, func(i, j int) bool {
		gi, ni := rank(files[i])
		gj, nj := rank(files[j])
		if gi != gj {
			return gi < gj
		}
		return ni < nj
	})
	return files, nil
}

// rank orders listing entries: (group, number). jemk is checked before the
// bare jem pattern since "jemk12" also contains "jem".
func rank(filename string) (int, int) {
	if m := jemkNumber.FindStringSubmatch(filename); m != nil {
		n, _ := strconv.Atoi(m[1])
		return 1, n
	}
	if m := jemNumber.FindStringSubmatch(filename); m != nil {
		n, _ := strconv.Atoi(m[1])
		return 0, n
	}
	return 2, 0
}

// NormalizeFilename fixes known listing quirks: a stray _0 suffix is
// dropped and jem numbers are zero-padded to three digits, so jem7.chordpro
// and jem917_0.chordpro become jem007.chordpro and jem917.chordpro.
func NormalizeFilename(filename string) string {
	filename = zeroSuffix.ReplaceAllString(filename, ".chordpro")

	if m := jemPrefix.FindStringSubmatch(filename); m != nil {
		number := m[1]
		for len(number) < 3 {
			number = "0" + number
		}
		return "jem" + number + ".chordpro"
	}
	return filename
}

// DownloadSong fetches one ChordPro file and returns its content together
// with the normalized file name it should be stored under.
func (c *Client) DownloadSong(ctx context.Context, filename string) ([]byte, string, error) {
	body, err := c.get(ctx, c.baseURL+filename)
	if err != nil {
		return nil, "", err
	}
	return body, NormalizeFilename(filename), nil
}

// DownloadCatalog fetches and parses the metadata CSV.
func (c *Client) DownloadCatalog(ctx context.Context) (meta.Table, error) {
	body, err := c.get(ctx, c.catalogURL)
	if err != nil {
		return nil, err
	}
	return meta.ParseCSV(strings.NewReader(string(body)))
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewIO("request", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewIO("download", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &errors.NotFoundError{Resource: "remote resource", ID: url}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewIO("download", url, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewIO("read", url, err)
	}

	logging.Download(url, int64(len(body)), time.Since(start))
	return body, nil
}
