package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestRecordFill(t *testing.T) {
	type server struct {
		Host string   `json:"host"`
		Port int      `json:"port"`
		Tags []string `json:"tags"`
	}

	record := Record{
		"host": "localhost",
		"port": 8080,
		"tags": []any{"a", "b"},
	}

	var target server
	if err := record.Fill(&target); err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	if target.Host != "localhost" || target.Port != 8080 {
		t.Errorf("filled struct = %+v", target)
	}
	if !reflect.DeepEqual(target.Tags, []string{"a", "b"}) {
		t.Errorf("tags = %v", target.Tags)
	}
}

func TestRecordFillRejectsNonPointer(t *testing.T) {
	type server struct{}
	record := Record{}
	if err := record.Fill(server{}); err == nil {
		t.Errorf("expected Fill of a non-pointer to fail")
	}
	var nilPtr *server
	if err := record.Fill(nilPtr); err == nil {
		t.Errorf("expected Fill of a nil pointer to fail")
	}
}

func TestRecordPrettyTable(t *testing.T) {
	record := Record{
		"name":   "web",
		"nested": map[string]any{"a": 1},
	}
	table := record.PrettyTable()
	if !strings.Contains(table, "name") || !strings.Contains(table, "web") {
		t.Errorf("table missing scalar row:\n%s", table)
	}
	if !strings.Contains(table, `{"a":1}`) {
		t.Errorf("table missing compact JSON for nested value:\n%s", table)
	}

	if got := (Record{}).PrettyTable(); got != "<>" {
		t.Errorf("empty table = %q", got)
	}
}

func TestRecordPrettyJson(t *testing.T) {
	record := Record{"a": 1}
	if got := record.PrettyJson(); got != `{"a":1}` {
		t.Errorf("PrettyJson = %q", got)
	}
	if got := record.PrettyJson("  "); !strings.Contains(got, "\n") {
		t.Errorf("indented PrettyJson has no newlines: %q", got)
	}
}

func TestRecordKeysAndEmpty(t *testing.T) {
	record := Record{"b": 1, "a": 2}
	if !reflect.DeepEqual(record.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys = %v", record.Keys())
	}
	if record.Empty() {
		t.Errorf("non-empty record reported empty")
	}
	if !(Record{}).Empty() {
		t.Errorf("empty record reported non-empty")
	}
}

func TestRecordDeepMerge(t *testing.T) {
	base := Record{
		"scalar": 1,
		"nested": Record{"keep": "x", "replace": "old"},
	}
	base.DeepMerge(Record{
		"scalar": 2,
		"nested": Record{"replace": "new"},
		"added":  true,
	})

	if base["scalar"] != 2 {
		t.Errorf("scalar = %v, want 2", base["scalar"])
	}
	nested := base["nested"].(Record)
	if nested["keep"] != "x" || nested["replace"] != "new" {
		t.Errorf("nested = %v", nested)
	}
	if base["added"] != true {
		t.Errorf("added key missing")
	}
}
