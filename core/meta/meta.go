// Package meta holds song metadata sourced from the JEMAF catalog table and
// its lookup semantics.
//
// The catalog is a semicolon-delimited CSV with French column headers. Each
// row describes one song, keyed by its file name stem (the "Fichier" column).
// Lookups are case-insensitive on the stem and exact otherwise; there is no
// fuzzy matching.
package meta

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/bricedupuy/chordshow/core/errors"
)

// Record is one song's metadata from the catalog. Immutable once loaded.
type Record struct {
	Number        string // Fichier: song number, doubles as file stem
	Title         string // Titre
	Title2        string // 2e titre
	OriginalTitle string // Titre original
	Composer      string // Compositeur
	Author        string // Auteur
	Key           string // Tonalité
	Format        string // Format
	Copyright     string // Copyright
	Reference     string // Référence
	Theme         string // Thème
	TuneOf        string // Air du
	Volume        string // Vol.
	Supplement    string // Suppl
	F1            string // F1
	Link          string // Lien
}

// Table maps lowercased file stems to records.
type Table map[string]Record

// Lookup returns the record for a file stem, matching case-insensitively.
func (t Table) Lookup(stem string) (Record, bool) {
	rec, ok := t[strings.ToLower(stem)]
	return rec, ok
}

// ParseCSV reads a catalog table from semicolon-delimited CSV. The first row
// must be a header naming at least the Fichier column; rows without a
// Fichier value are skipped. A UTF-8 byte order mark is tolerated and all
// fields are whitespace-trimmed.
func ParseCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "catalog CSV", err)
	}

	content := strings.TrimPrefix(string(data), "\uFEFF")

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParse("CSV", "", err.Error())
	}
	if len(rows) == 0 {
		return nil, errors.NewParse("CSV", "", "empty catalog")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	if _, ok := header["Fichier"]; !ok {
		return nil, errors.NewParse("CSV", "", "missing Fichier column")
	}

	field := func(row []string, name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	table := make(Table, len(rows)-1)
	for _, row := range rows[1:] {
		fichier := field(row, "Fichier")
		if fichier == "" {
			continue
		}

		table[strings.ToLower(fichier)] = Record{
			Number:        fichier,
			Title:         field(row, "Titre"),
			Title2:        field(row, "2e titre"),
			OriginalTitle: field(row, "Titre original"),
			Composer:      field(row, "Compositeur"),
			Author:        field(row, "Auteur"),
			Key:           field(row, "Tonalité"),
			Format:        field(row, "Format"),
			Copyright:     field(row, "Copyright"),
			Reference:     field(row, "Référence"),
			Theme:         field(row, "Thème"),
			TuneOf:        field(row, "Air du"),
			Volume:        field(row, "Vol."),
			Supplement:    field(row, "Suppl"),
			F1:            field(row, "F1"),
			Link:          field(row, "Lien"),
		}
	}

	return table, nil
}
