package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/id"
)

type versionKey struct {
	id      string
	version int
}

// chainOps describes how a versioned record type is identified and filed.
type chainOps[T any] struct {
	kind       string // subdirectory under each financial year, e.g. "quotes"
	noun       string // used in error messages
	id         func(T) string
	fy         func(T) string
	setVersion func(*T, int)
	clone      func(T) T
	validate   func(T) error
}

// versionedDir holds every version of one record type. Each save writes a
// new immutable {id}_v{n}.json file; earlier files are never touched.
type versionedDir[T any] struct {
	ops     chainOps[T]
	records map[versionKey]T
	latest  map[string]int
}

func newVersionedDir[T any](ops chainOps[T]) *versionedDir[T] {
	return &versionedDir[T]{
		ops:     ops,
		records: make(map[versionKey]T),
		latest:  make(map[string]int),
	}
}

func (d *versionedDir[T]) reset() {
	clear(d.records)
	clear(d.latest)
}

// load scans {fy}/{kind}/*_v*.json under every financial year directory.
func (d *versionedDir[T]) load(fyDirs []string, log zerolog.Logger) error {
	for _, fyDir := range fyDirs {
		dir := filepath.Join(fyDir, d.ops.kind)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		n := 0
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || !strings.Contains(e.Name(), "_v") {
				continue
			}
			recID, version, err := id.ParseVersioned(e.Name())
			if err != nil {
				return fmt.Errorf("loading %s: %w", d.ops.kind, err)
			}
			path := filepath.Join(dir, e.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			var rec T
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			if err := d.ops.validate(rec); err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			d.ops.setVersion(&rec, version)
			d.records[versionKey{recID, version}] = rec
			if version > d.latest[recID] {
				d.latest[recID] = version
			}
			n++
		}
		log.Debug().Str("dir", dir).Int("versions", n).Msg("loaded versioned records")
	}
	return nil
}

// save assigns the next version, writes the new file and returns the
// stored copy.
func (d *versionedDir[T]) save(root string, rec T) (T, error) {
	var zero T
	recID := d.ops.id(rec)
	if recID == "" {
		return zero, fmt.Errorf("saving %s: empty id: %w", d.ops.noun, errs.ErrInvalid)
	}
	version := d.latest[recID] + 1
	stored := d.ops.clone(rec)
	d.ops.setVersion(&stored, version)

	path := filepath.Join(root, d.ops.fy(stored), d.ops.kind, id.FormatVersioned(recID, version))
	if err := writeJSON(path, stored); err != nil {
		return zero, fmt.Errorf("saving %s %s: %w", d.ops.noun, recID, err)
	}
	d.records[versionKey{recID, version}] = stored
	d.latest[recID] = version
	return d.ops.clone(stored), nil
}

// get returns the given version, or the latest when version is 0.
func (d *versionedDir[T]) get(recID string, version int) (T, error) {
	var zero T
	if version == 0 {
		v, ok := d.latest[recID]
		if !ok {
			return zero, fmt.Errorf("%s %s: %w", d.ops.noun, recID, errs.ErrNotFound)
		}
		version = v
	}
	rec, ok := d.records[versionKey{recID, version}]
	if !ok {
		return zero, fmt.Errorf("%s %s version %d: %w", d.ops.noun, recID, version, errs.ErrNotFound)
	}
	return d.ops.clone(rec), nil
}

func (d *versionedDir[T]) exists(recID string) bool {
	_, ok := d.latest[recID]
	return ok
}

// versions returns the stored version numbers for recID in ascending order.
func (d *versionedDir[T]) versions(recID string) []int {
	var out []int
	for k := range d.records {
		if k.id == recID {
			out = append(out, k.version)
		}
	}
	sort.Ints(out)
	return out
}

// list returns records ordered by id then version, filtered by financial year.
func (d *versionedDir[T]) list(f DocumentFilter) []T {
	var keys []versionKey
	if f.AllVersions {
		for k := range d.records {
			keys = append(keys, k)
		}
	} else {
		for recID, v := range d.latest {
			keys = append(keys, versionKey{recID, v})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].version < keys[j].version
	})

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		rec := d.records[k]
		if f.FinancialYear != "" && d.ops.fy(rec) != f.FinancialYear {
			continue
		}
		out = append(out, d.ops.clone(rec))
	}
	return out
}

// DocumentFilter narrows quote, job and invoice listings.
type DocumentFilter struct {
	FinancialYear string // "2025-26"; empty means every year
	AllVersions   bool   // include superseded versions
}
