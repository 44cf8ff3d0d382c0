package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bricedupuy/chordshow/core/meta"
)

const rawSong = `{key: C}
{start_of_chorus}
Alléluia
{end_of_chorus}
`

func TestRunWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Stem: "jem001", Raw: []byte(rawSong)},
		{Stem: "jem002", Raw: []byte(rawSong)},
	}
	table := meta.Table{
		"jem001": {Number: "JEM001", Title: "Premier"},
	}

	outcome, err := Run(context.Background(), jobs, Options{
		OutputDir: dir,
		Workers:   2,
		Table:     table,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.RunID == "" {
		t.Error("missing run id")
	}
	if len(outcome.Failed) != 0 {
		t.Errorf("failures: %v", outcome.Failed)
	}
	sort.Strings(outcome.Processed)
	if len(outcome.Processed) != 2 || outcome.Processed[0] != "jem001" {
		t.Errorf("processed = %v", outcome.Processed)
	}

	for _, name := range []string{
		"jem001-enhanced.chordpro", "jem001.show",
		"jem002-enhanced.chordpro", "jem002.show",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestRunShowFileIsValidJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), []Job{{Stem: "jem001", Raw: []byte(rawSong)}}, Options{
		OutputDir: dir,
		Workers:   1,
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "jem001.show"))
	if err != nil {
		t.Fatal(err)
	}
	var top []json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("show file is not a JSON array: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("show array has %d elements, want 2", len(top))
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Stem: "", Raw: []byte(rawSong)}, // invalid: empty stem
		{Stem: "jem002", Raw: []byte(rawSong)},
	}

	outcome, err := Run(context.Background(), jobs, Options{OutputDir: dir, Workers: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outcome.Failed) != 1 {
		t.Errorf("failed = %v, want 1 entry", outcome.Failed)
	}
	if len(outcome.Processed) != 1 || outcome.Processed[0] != "jem002" {
		t.Errorf("processed = %v, want jem002 despite sibling failure", outcome.Processed)
	}
}

func TestRunValidatesOutputDir(t *testing.T) {
	if _, err := Run(context.Background(), nil, Options{}); err == nil {
		t.Error("empty output dir must be rejected")
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Stem: "jem001", Raw: []byte(rawSong)}}
	_, err := Run(ctx, jobs, Options{OutputDir: t.TempDir(), Workers: 1})
	if err == nil {
		t.Error("canceled context should surface an error")
	}
}
