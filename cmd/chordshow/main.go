// Command chordshow converts JEMAF ChordPro songs into FreeShow .show files.
// It works on local directories or straight from the JEMAF site, enriching
// songs with catalog metadata along the way.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/bricedupuy/chordshow/core/meta"
	"github.com/bricedupuy/chordshow/internal/batch"
	"github.com/bricedupuy/chordshow/internal/bundle"
	"github.com/bricedupuy/chordshow/internal/catalog"
	"github.com/bricedupuy/chordshow/internal/config"
	"github.com/bricedupuy/chordshow/internal/fetch"
	"github.com/bricedupuy/chordshow/internal/logging"
	"github.com/bricedupuy/chordshow/internal/picker"
)

const version = "0.2.0"

// CLI defines the command-line interface for chordshow.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Directory containing chordshow.yaml" default:"."`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text"`

	Process ProcessCmd   `cmd:"" help:"Convert local ChordPro files"`
	Fetch   FetchCmd     `cmd:"" help:"Download songs from JEMAF and convert them"`
	Catalog CatalogGroup `cmd:"" help:"Metadata catalog operations"`
	Bundle  BundleGroup  `cmd:"" help:"Songbook bundle operations"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// CatalogGroup contains catalog cache operations.
type CatalogGroup struct {
	Sync CatalogSyncCmd `cmd:"" help:"Download the metadata catalog into the local cache"`
	Info CatalogInfoCmd `cmd:"" help:"Show local catalog cache status"`
}

// BundleGroup contains bundle pack/unpack operations.
type BundleGroup struct {
	Create  BundleCreateCmd  `cmd:"" help:"Pack an output directory into a bundle"`
	Extract BundleExtractCmd `cmd:"" help:"Unpack a bundle into a directory"`
	List    BundleListCmd    `cmd:"" help:"List bundle contents"`
}

// loadConfig resolves the effective configuration and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}

	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), format)
	return cfg, nil
}

// ProcessCmd converts a directory of local ChordPro files.
type ProcessCmd struct {
	InputDir string `arg:"" help:"Directory containing .chordpro files" type:"existingdir"`
	CSV      string `name:"csv" help:"Metadata CSV file (semicolon-delimited)" type:"existingfile"`
	Out      string `name:"out" short:"o" help:"Output directory (default from config)"`
	Workers  int    `name:"workers" help:"Parallel conversions (default from config)"`
}

func (c *ProcessCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := loadLocalTable(c.CSV, cfg)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(c.InputDir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}

	var jobs []batch.Job
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".chordpro") {
			continue
		}
		// Already-enhanced files are outputs of a previous run.
		if strings.HasSuffix(entry.Name(), "-enhanced.chordpro") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(c.InputDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		jobs = append(jobs, batch.Job{
			Stem: strings.TrimSuffix(entry.Name(), ".chordpro"),
			Raw:  raw,
		})
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no .chordpro files in %s", c.InputDir)
	}

	return runBatch(jobs, c.Out, c.Workers, cfg, table)
}

// loadLocalTable reads the metadata table from an explicit CSV file, falling
// back to the catalog cache when none is given.
func loadLocalTable(csvPath string, cfg *config.Config) (meta.Table, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("open metadata CSV: %w", err)
		}
		defer f.Close()
		return meta.ParseCSV(f)
	}

	store, err := catalog.Open(cfg.Output.CatalogDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	table, err := store.Load(context.Background())
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		logging.Warn("catalog cache empty, songs will keep their source metadata",
			"db", cfg.Output.CatalogDB)
	}
	return table, nil
}

// FetchCmd downloads songs from the JEMAF site and converts them.
type FetchCmd struct {
	All     bool   `name:"all" help:"Convert every listed song without prompting"`
	Out     string `name:"out" short:"o" help:"Output directory (default from config)"`
	Workers int    `name:"workers" help:"Parallel conversions (default from config)"`
}

func (c *FetchCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	client := fetch.NewClient(cfg.Source.BaseURL, cfg.Source.CatalogURL)

	table, err := client.DownloadCatalog(ctx)
	if err != nil {
		logging.Warn("catalog download failed, falling back to local cache", "error", err)
		table, err = loadCachedCatalog(ctx, cfg)
		if err != nil {
			logging.Warn("catalog cache unavailable, continuing without metadata", "error", err)
			table = meta.Table{}
		}
	} else if err := saveCatalog(ctx, cfg, table); err != nil {
		logging.Warn("catalog cache update failed", "error", err)
	}

	files, err := client.ListSongs(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no songs listed at %s", cfg.Source.BaseURL)
	}

	if !c.All {
		files, err = pickSongs(files, table)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("Aucun chant sélectionné.")
			return nil
		}
	}

	var jobs []batch.Job
	for _, filename := range files {
		raw, normalized, err := client.DownloadSong(ctx, filename)
		if err != nil {
			logging.SongFailed(filename, "download", err)
			continue
		}
		jobs = append(jobs, batch.Job{
			Stem: strings.TrimSuffix(normalized, ".chordpro"),
			Raw:  raw,
		})
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no songs could be downloaded")
	}

	return runBatch(jobs, c.Out, c.Workers, cfg, table)
}

// pickSongs runs the interactive selector over the listing.
func pickSongs(files []string, table meta.Table) ([]string, error) {
	items := make([]picker.Item, 0, len(files))
	for _, filename := range files {
		normalized := fetch.NormalizeFilename(filename)
		stem := strings.TrimSuffix(normalized, ".chordpro")

		item := picker.Item{Filename: normalized}
		if rec, ok := table.Lookup(stem); ok {
			item.Title = rec.Title
			item.Author = rec.Author
		}
		items = append(items, item)
	}

	chosen, err := picker.Run("Chants disponibles", items)
	if err != nil {
		return nil, err
	}

	// Map normalized names back to the listing entries to download.
	byNormalized := make(map[string]string, len(files))
	for _, filename := range files {
		byNormalized[fetch.NormalizeFilename(filename)] = filename
	}
	var selected []string
	for _, item := range chosen {
		if original, ok := byNormalized[item.Filename]; ok {
			selected = append(selected, original)
		}
	}
	return selected, nil
}

func loadCachedCatalog(ctx context.Context, cfg *config.Config) (meta.Table, error) {
	store, err := catalog.Open(cfg.Output.CatalogDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}

func saveCatalog(ctx context.Context, cfg *config.Config, table meta.Table) error {
	store, err := catalog.Open(cfg.Output.CatalogDB)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, table)
}

// runBatch resolves output settings and runs the conversion pool.
func runBatch(jobs []batch.Job, out string, workers int, cfg *config.Config, table meta.Table) error {
	if out == "" {
		out = cfg.Output.Dir
	}
	if workers == 0 {
		workers = cfg.Workers
	}

	outcome, err := batch.Run(context.Background(), jobs, batch.Options{
		OutputDir: out,
		Workers:   workers,
		Table:     table,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Converted %d song(s) to %s", len(outcome.Processed), out)
	if len(outcome.Failed) > 0 {
		fmt.Printf(" (%d failed)", len(outcome.Failed))
	}
	fmt.Println()

	if len(outcome.Failed) > 0 {
		for stem, ferr := range outcome.Failed {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", stem, ferr)
		}
		return fmt.Errorf("%d song(s) failed", len(outcome.Failed))
	}
	return nil
}

// CatalogSyncCmd refreshes the local catalog cache.
type CatalogSyncCmd struct{}

func (c *CatalogSyncCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	client := fetch.NewClient(cfg.Source.BaseURL, cfg.Source.CatalogURL)
	table, err := client.DownloadCatalog(ctx)
	if err != nil {
		return err
	}
	if err := saveCatalog(ctx, cfg, table); err != nil {
		return err
	}

	fmt.Printf("Catalog synced: %d record(s) in %s\n", len(table), cfg.Output.CatalogDB)
	return nil
}

// CatalogInfoCmd reports the state of the local catalog cache.
type CatalogInfoCmd struct{}

func (c *CatalogInfoCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, err := catalog.Open(cfg.Output.CatalogDB)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	updated, err := store.UpdatedAt(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog: %s\n", cfg.Output.CatalogDB)
	fmt.Printf("Records: %d\n", count)
	if updated.IsZero() {
		fmt.Println("Last sync: never")
	} else {
		fmt.Printf("Last sync: %s\n", updated.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

// BundleCreateCmd packs converted artifacts into a bundle.
type BundleCreateCmd struct {
	Dir string `arg:"" help:"Directory to pack" type:"existingdir"`
	Out string `arg:"" help:"Bundle path (.tar.xz or .tar.gz)" type:"path"`
}

func (c *BundleCreateCmd) Run() error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	if err := bundle.Create(c.Dir, c.Out); err != nil {
		return err
	}
	fmt.Printf("Bundle written to %s\n", c.Out)
	return nil
}

// BundleExtractCmd unpacks a bundle.
type BundleExtractCmd struct {
	Bundle string `arg:"" help:"Bundle path" type:"existingfile"`
	Dir    string `arg:"" help:"Destination directory" type:"path"`
}

func (c *BundleExtractCmd) Run() error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	if err := bundle.Extract(c.Bundle, c.Dir); err != nil {
		return err
	}
	fmt.Printf("Bundle extracted to %s\n", c.Dir)
	return nil
}

// BundleListCmd lists bundle entries.
type BundleListCmd struct {
	Bundle string `arg:"" help:"Bundle path" type:"existingfile"`
}

func (c *BundleListCmd) Run() error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	names, err := bundle.List(c.Bundle)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("chordshow %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("chordshow"),
		kong.Description("JEMAF ChordPro to FreeShow converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
