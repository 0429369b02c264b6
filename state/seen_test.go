package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	set := Load(path)
	if len(set) != 0 {
		t.Errorf("missing file should load as empty set, got %d ids", len(set))
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	set := Load(path)
	if len(set) != 0 {
		t.Errorf("corrupt file should load as empty set, got %d ids", len(set))
	}
}

func TestLoad_WrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte(`{"id":"X"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	set := Load(path)
	if len(set) != 0 {
		t.Errorf("non-array JSON should load as empty set, got %d ids", len(set))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	set := make(SeenSet)
	set.Add("charlie")
	set.Add("alpha")
	set.Add("bravo")

	if err := Save(path, set); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(path)
	if !reflect.DeepEqual(loaded, set) {
		t.Errorf("round trip mismatch: saved %v, loaded %v", set.Sorted(), loaded.Sorted())
	}
}

func TestSave_SortedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	set := make(SeenSet)
	set.Add("zulu")
	set.Add("alpha")
	set.Add("mike")

	if err := Save(path, set); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("state file is not a JSON string array: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("on-disk order = %v, want %v", ids, want)
	}
}

func TestClone_Independent(t *testing.T) {
	set := make(SeenSet)
	set.Add("X")

	clone := set.Clone()
	clone.Add("Y")

	if set.Has("Y") {
		t.Error("mutating the clone leaked into the original set")
	}
	if !clone.Has("X") {
		t.Error("clone lost an id from the original set")
	}
}
