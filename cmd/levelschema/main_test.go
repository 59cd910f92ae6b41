package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema", "level.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("writeSchema: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["title"] != "spherefall level" {
		t.Fatalf("unexpected title %v", doc["title"])
	}
	for _, field := range []string{"death_planes", "spawn", "cubes", "rotations"} {
		if !strings.Contains(string(data), `"`+field+`"`) {
			t.Fatalf("schema does not mention %q", field)
		}
	}
}
