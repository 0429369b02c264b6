// Package state persists the set of already-notified record ids
// between runs. The on-disk format is a sorted JSON string array so
// diffs and manual resets stay trivial.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// SeenSet holds record ids that have already triggered a notification.
// It only ever grows; ids are never removed short of deleting the
// state file.
type SeenSet map[string]struct{}

// Has reports whether id was already recorded.
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records id.
func (s SeenSet) Add(id string) {
	s[id] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s SeenSet) Clone() SeenSet {
	c := make(SeenSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the ids in lexical order.
func (s SeenSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load reads the seen-set from path. A missing file or unparsable
// content yields an empty set: losing state means re-notifying, which
// is recoverable, while aborting the run is not.
func Load(path string) SeenSet {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("state: read failed, starting with empty seen-set",
				"path", path, "error", err)
		}
		return make(SeenSet)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("state: unparsable state file, starting with empty seen-set",
			"path", path, "error", err)
		return make(SeenSet)
	}

	set := make(SeenSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Save rewrites the full set at path as a sorted JSON array. The write
// goes through a temp file and rename so a crash mid-write never
// leaves a truncated state file behind.
func Save(path string, s SeenSet) error {
	data, err := json.MarshalIndent(s.Sorted(), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fpds_seen-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
