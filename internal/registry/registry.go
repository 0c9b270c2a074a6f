// Package registry holds the authoritative in-memory index of records and
// mirrors it to a single JSON data file. A Registry is constructed
// explicitly and owned by its caller; there is no process-wide instance.
//
// The registry is not safe for concurrent use. The console drives it from a
// single goroutine.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// Registry maps composite keys to live records and saves or reloads them as
// a whole against one file.
type Registry struct {
	path    string
	records map[string]*types.Record
	logger  *slog.Logger
	clock   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for save and reload diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces the time source used when Save refreshes modified
// records.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
		}
	}
}

// New creates an empty registry bound to the data file at path. Call Reload
// to pick up previously saved records.
func New(path string, opts ...Option) *Registry {
	r := &Registry{
		path:    path,
		records: make(map[string]*types.Record),
		logger:  slog.New(slog.DiscardHandler),
		clock:   types.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the data file location.
func (r *Registry) Path() string { return r.path }

// All returns a live, read-only view of every record.
func (r *Registry) All() View {
	return View{r: r}
}

// Get looks up a record by kind and id. A missing record is reported through
// the boolean, never as an error.
func (r *Registry) Get(kind types.Kind, id string) (*types.Record, bool) {
	rec, ok := r.records[types.CompositeKey(kind, id)]
	return rec, ok
}

// Add inserts rec under its composite key. Returns a DuplicateIdentityError
// if the key is already held; the existing entry is left in place.
func (r *Registry) Add(rec *types.Record) error {
	if rec == nil {
		return errors.New("registry: nil record")
	}
	key := rec.Key()
	if _, exists := r.records[key]; exists {
		return &types.DuplicateIdentityError{Key: key}
	}
	r.records[key] = rec
	r.logger.Debug("record added", "key", key)
	return nil
}

// Remove deletes the record held under key and reports whether there was one.
func (r *Registry) Remove(key string) bool {
	if _, ok := r.records[key]; !ok {
		return false
	}
	delete(r.records, key)
	r.logger.Debug("record removed", "key", key)
	return true
}

// Save writes every record to the data file, replacing its contents. Records
// modified since they were last touched get UpdatedAt refreshed; untouched
// records keep their timestamps, so saving twice in a row changes nothing.
// On failure a PersistenceError is returned and no in-memory state changes,
// timestamps and dirty marks included.
func (r *Registry) Save() error {
	now := r.clock()

	doc := make(document, len(r.records))
	var touched []*types.Record
	for key, rec := range r.records {
		if rec.Dirty() {
			c := rec.Clone()
			c.TouchAt(now)
			doc[key] = c.ToFlatMap()
			touched = append(touched, rec)
			continue
		}
		doc[key] = rec.ToFlatMap()
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return &types.PersistenceError{Op: "encode", Path: r.path, Err: err}
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		r.logger.Warn("save failed", "path", r.path, "error", err)
		return &types.PersistenceError{Op: "write", Path: r.path, Err: err}
	}

	for _, rec := range touched {
		rec.TouchAt(now)
	}
	r.logger.Debug("registry saved", "path", r.path, "records", len(doc), "touched", len(touched))
	return nil
}

// Reload reads the data file and replaces every in-memory record whose key
// appears in it. A missing file is not an error. Any malformed entry aborts
// the whole reload with a MalformedRecordError before the registry is
// modified.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("no data file, starting empty", "path", r.path)
		return nil
	}
	if err != nil {
		return &types.PersistenceError{Op: "read", Path: r.path, Err: err}
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return &types.MalformedRecordError{Reason: "decoding " + r.path, Err: err}
	}

	staged := make(map[string]*types.Record, len(doc))
	for key, m := range doc {
		rec, err := types.FromFlatMap(m)
		if err != nil {
			return withKey(key, err)
		}
		if rec.Key() != key {
			return &types.MalformedRecordError{
				Key:    key,
				Reason: fmt.Sprintf("entry holds record %q", rec.Key()),
			}
		}
		staged[key] = rec
	}

	for key, rec := range staged {
		r.records[key] = rec
	}
	r.logger.Debug("registry reloaded", "path", r.path, "records", len(staged))
	return nil
}

// withKey attaches the file entry key to a MalformedRecordError.
func withKey(key string, err error) error {
	var m *types.MalformedRecordError
	if errors.As(err, &m) {
		c := *m
		c.Key = key
		return &c
	}
	return &types.MalformedRecordError{Key: key, Err: err}
}

// View is a read-only window onto a registry. It reflects later changes to
// the registry but offers no way to modify its index.
type View struct {
	r *Registry
}

// Len returns the number of records.
func (v View) Len() int { return len(v.r.records) }

// Get returns the record held under key.
func (v View) Get(key string) (*types.Record, bool) {
	rec, ok := v.r.records[key]
	return rec, ok
}

// Keys returns every composite key in sorted order.
func (v View) Keys() []string {
	keys := make([]string, 0, len(v.r.records))
	for k := range v.r.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Records returns the records of kind in key order. An empty kind selects
// every record.
func (v View) Records(kind types.Kind) []*types.Record {
	var out []*types.Record
	for _, k := range v.Keys() {
		rec := v.r.records[k]
		if kind == "" || rec.Kind() == kind {
			out = append(out, rec)
		}
	}
	return out
}

// Range calls fn for each record in key order until fn returns false.
func (v View) Range(fn func(key string, rec *types.Record) bool) {
	for _, k := range v.Keys() {
		rec, ok := v.r.records[k]
		if !ok {
			continue // removed by an earlier fn call
		}
		if !fn(k, rec) {
			return
		}
	}
}
