// Package bundle packs converted songbook artifacts into compressed tar
// bundles and reads them back. It supports tar.gz and tar.xz.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/bricedupuy/chordshow/core/errors"
)

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader creates a new bundle reader for the given path.
// Compression is detected from the file suffix, falling back to the
// compressed stream's magic bytes for unrecognized names.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	format, err := detectFormat(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch format {
	case formatXZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewParse("xz", path, err.Error())
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case formatGzip:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewParse("gzip", path, err.Error())
		}
		reader = gzr
		decompressor = gzr
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

type format int

const (
	formatGzip format = iota
	formatXZ
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// detectFormat resolves the compression format, by suffix first and by the
// stream's leading magic bytes otherwise. The file offset is restored.
func detectFormat(path string, f *os.File) (format, error) {
	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		return formatXZ, nil
	case strings.HasSuffix(path, ".tar.gz"):
		return formatGzip, nil
	}

	head := make([]byte, len(xzMagic))
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return 0, errors.NewIO("read", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, errors.NewIO("seek", path, err)
	}
	head = head[:n]

	switch {
	case len(head) >= len(xzMagic) && string(head[:len(xzMagic)]) == string(xzMagic):
		return formatXZ, nil
	case len(head) >= len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1]:
		return formatGzip, nil
	}
	return 0, errors.NewUnsupported("bundle format", path)
}

// Close closes the bundle reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback function for iterating bundle entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in the bundle, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewParse("tar", "", err.Error())
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Walk opens a bundle and iterates through its entries.
func Walk(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}

// List returns the entry names of a bundle in archive order.
func List(path string) ([]string, error) {
	var names []string
	err := Walk(path, func(header *tar.Header, _ io.Reader) (bool, error) {
		if header.Typeflag != tar.TypeDir {
			names = append(names, header.Name)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ReadFile reads a specific file from the bundle. Entries are matched with
// or without their leading bundle directory.
func ReadFile(bundlePath, filename string) ([]byte, error) {
	var content []byte
	err := Walk(bundlePath, func(header *tar.Header, r io.Reader) (bool, error) {
		name := header.Name
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == filename || header.Name == filename {
			var err error
			content, err = io.ReadAll(r)
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.NewNotFound("bundle entry", filename)
	}
	return content, nil
}

// Extract unpacks a bundle into a destination directory. Entry paths are
// confined to the destination; entries that would escape it are rejected.
func Extract(bundlePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.NewIO("mkdir", destDir, err)
	}

	return Walk(bundlePath, func(header *tar.Header, r io.Reader) (bool, error) {
		target := filepath.Join(destDir, filepath.Clean(header.Name))
		rel, err := filepath.Rel(destDir, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false, errors.NewValidation("entry", "path escapes destination: "+header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return false, errors.NewIO("mkdir", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return false, errors.NewIO("mkdir", filepath.Dir(target), err)
			}
			out, err := os.Create(target)
			if err != nil {
				return false, errors.NewIO("create", target, err)
			}
			if _, err := io.Copy(out, r); err != nil {
				out.Close()
				return false, errors.NewIO("write", target, err)
			}
			if err := out.Close(); err != nil {
				return false, errors.NewIO("close", target, err)
			}
		}
		return false, nil
	})
}
