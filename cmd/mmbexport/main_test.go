package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mm0-org/mmb/export"
)

const testFixture = `{
  "formatVersion": "v1.0.0",
  "sorts": [{"name": "wff"}],
  "terms": [
    {"name": "imp", "ret": "wff", "args": [
      {"name": "a", "sort": "wff", "bound": true},
      {"name": "b", "sort": "wff", "bound": true}
    ]}
  ]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(path, []byte(testFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEnvironmentAndExportRoundTrip(t *testing.T) {
	path := writeFixture(t)
	e, err := loadEnvironment(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Sorts.Len() != 1 || e.Terms.Len() != 1 {
		t.Fatalf("expected one sort and one term, got sorts=%d terms=%d", e.Sorts.Len(), e.Terms.Len())
	}

	var out bytes.Buffer
	res, err := export.Export(e, &out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Size != int64(out.Len()) {
		t.Fatalf("expected size %d, got %d", out.Len(), res.Size)
	}
}

func TestDigestHexFormatsLowercase(t *testing.T) {
	var d [32]byte
	d[0] = 0xab
	d[1] = 0x0f
	got := digestHex(d)
	if got[:4] != "ab0f" {
		t.Fatalf("expected leading %q, got %q", "ab0f", got[:4])
	}
}
