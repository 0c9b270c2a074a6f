package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Reserved flat-map keys. KeyClass carries the kind discriminator and cannot
// collide with a domain attribute name.
const (
	KeyClass     = "__class__"
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// TimeLayout is the timestamp format used in flat maps and the data file.
// It is sortable and keeps microsecond resolution.
const TimeLayout = "2006-01-02T15:04:05.000000"

// reservedKeys are the flat-map fields Construct reads itself rather than
// keeping as attributes.
var reservedKeys = map[string]bool{
	KeyClass:     true,
	KeyID:        true,
	KeyCreatedAt: true,
	KeyUpdatedAt: true,
}

// immutableKeys cannot be written through SetAttribute. "kind" names the
// discriminator in its attribute form; a stray "kind" key in a data file is
// still kept as an attribute on reload.
var immutableKeys = map[string]bool{
	KeyClass:     true,
	KeyID:        true,
	KeyCreatedAt: true,
	KeyUpdatedAt: true,
	"kind":       true,
}

// FlatMap is the attribute-name-to-value projection of a record used for
// persistence.
type FlatMap map[string]any

// Now returns the current time at the resolution records keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Record is one typed entity held by the registry.
type Record struct {
	kind      Kind
	id        string
	createdAt time.Time
	updatedAt time.Time
	attrs     map[string]any
	dirty     bool // set by SetAttribute, cleared by Touch
}

// newID generates a UUID v7 for a record, falling back to v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// NewRecord creates a record of kind with a fresh id and both timestamps set
// to now. Returns an error wrapping ErrUnknownKind if kind is not registered.
func NewRecord(kind Kind) (*Record, error) {
	if _, ok := kindTable[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	now := Now()
	return &Record{
		kind:      kind,
		id:        newID(),
		createdAt: now,
		updatedAt: now,
		attrs:     make(map[string]any),
	}, nil
}

// Construct builds a record of kind. With nil attrs it behaves like
// NewRecord. Otherwise attrs is a flat map being rehydrated: id, created_at
// and updated_at are adopted from it and must be present, a discriminator, if
// present, must name kind, and declared attributes are coerced to their
// declared type. Undeclared keys are kept as they are.
func Construct(kind Kind, attrs FlatMap) (*Record, error) {
	schema, ok := kindTable[kind]
	if !ok {
		return nil, &MalformedRecordError{Reason: fmt.Sprintf("kind %q", kind), Err: ErrUnknownKind}
	}
	if attrs == nil {
		return NewRecord(kind)
	}

	if v, ok := attrs[KeyClass]; ok {
		s, isString := v.(string)
		if !isString || Kind(s) != kind {
			return nil, malformed(fmt.Sprintf("discriminator %v does not match kind %q", v, kind), nil)
		}
	}

	id, ok := attrs[KeyID].(string)
	if !ok || id == "" {
		return nil, malformed("id missing or not a string", nil)
	}
	createdAt, err := parseTimestamp(attrs, KeyCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(attrs, KeyUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, malformed("updated_at precedes created_at", nil)
	}

	r := &Record{
		kind:      kind,
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
		attrs:     make(map[string]any, len(attrs)),
	}
	for k, v := range attrs {
		if reservedKeys[k] {
			continue
		}
		if vt, declared := schema.Attributes[k]; declared {
			cv, err := coerce(vt, v)
			if err != nil {
				return nil, malformed(fmt.Sprintf("attribute %q", k), err)
			}
			r.attrs[k] = cv
			continue
		}
		if s, ok := normalizeScalar(v); ok {
			v = s
		}
		r.attrs[k] = v
	}
	return r, nil
}

// FromFlatMap is the inverse of ToFlatMap: it reads the discriminator and
// dispatches to Construct for that kind.
func FromFlatMap(m FlatMap) (*Record, error) {
	raw, ok := m[KeyClass]
	if !ok {
		return nil, malformed(KeyClass+" missing", nil)
	}
	name, ok := raw.(string)
	if !ok {
		return nil, malformed(fmt.Sprintf("%s is %T, want string", KeyClass, raw), nil)
	}
	kind, ok := LookupKind(name)
	if !ok {
		return nil, &MalformedRecordError{Reason: fmt.Sprintf("kind %q", name), Err: ErrUnknownKind}
	}
	return Construct(kind, m)
}

// parseTimestamp reads a required timestamp from m. Strings in TimeLayout or
// RFC 3339 form and time.Time values are accepted.
func parseTimestamp(m FlatMap, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, malformed(key+" missing", nil)
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Truncate(time.Microsecond), nil
	case string:
		t, err := time.Parse(TimeLayout, x)
		if err != nil {
			t, err = time.Parse(time.RFC3339Nano, x)
		}
		if err != nil {
			return time.Time{}, malformed(key+" is not a timestamp", err)
		}
		return t.UTC().Truncate(time.Microsecond), nil
	default:
		return time.Time{}, malformed(fmt.Sprintf("%s is %T, want string", key, v), nil)
	}
}

// Kind returns the record's kind.
func (r *Record) Kind() Kind { return r.kind }

// ID returns the record's id.
func (r *Record) ID() string { return r.id }

// CreatedAt returns the construction time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the time of the last Touch.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// Key returns the composite key kind + "." + id.
func (r *Record) Key() string {
	return CompositeKey(r.kind, r.id)
}

// CompositeKey joins a kind and an id into the registry key.
func CompositeKey(kind Kind, id string) string {
	return string(kind) + "." + id
}

// Dirty reports whether the record was modified since its last Touch.
func (r *Record) Dirty() bool { return r.dirty }

// Touch sets UpdatedAt to now.
func (r *Record) Touch() {
	r.TouchAt(Now())
}

// TouchAt sets UpdatedAt to t. UpdatedAt never moves backwards: a t earlier
// than the current value leaves it unchanged. Clears the dirty mark.
func (r *Record) TouchAt(t time.Time) {
	t = t.UTC().Truncate(time.Microsecond)
	if t.After(r.updatedAt) {
		r.updatedAt = t
	}
	r.dirty = false
}

// SetAttribute sets or adds an attribute. Identity and timestamp fields are
// rejected with an ImmutableFieldError. Declared attributes must match their
// value type; undeclared ones accept any scalar.
func (r *Record) SetAttribute(name string, value any) error {
	if name == "" {
		return ErrInvalidName
	}
	if immutableKeys[name] {
		return &ImmutableFieldError{Field: name}
	}
	var (
		v   any
		err error
	)
	if vt, declared := kindTable[r.kind].Attributes[name]; declared {
		v, err = coerce(vt, value)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	} else {
		var ok bool
		v, ok = normalizeScalar(value)
		if !ok {
			return fmt.Errorf("attribute %q: %w: %T is not a scalar", name, ErrTypeMismatch, value)
		}
	}
	if r.attrs == nil {
		r.attrs = make(map[string]any)
	}
	r.attrs[name] = v
	r.dirty = true
	return nil
}

// Attribute returns the value of an attribute and whether it is set.
func (r *Record) Attribute(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Attributes returns a copy of all attribute values.
// Returns an empty map (not nil) if no attributes are set.
func (r *Record) Attributes() map[string]any {
	result := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		result[k] = v
	}
	return result
}

// ToFlatMap projects the record onto a flat map: every attribute plus id,
// both timestamps and the discriminator.
func (r *Record) ToFlatMap() FlatMap {
	m := make(FlatMap, len(r.attrs)+4)
	for k, v := range r.attrs {
		m[k] = v
	}
	m[KeyClass] = string(r.kind)
	m[KeyID] = r.id
	m[KeyCreatedAt] = r.createdAt.Format(TimeLayout)
	m[KeyUpdatedAt] = r.updatedAt.Format(TimeLayout)
	return m
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.attrs = r.Attributes()
	return &c
}

// Equal reports whether two records agree on kind, id, timestamps and
// attributes.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.kind != o.kind || r.id != o.id {
		return false
	}
	if !r.createdAt.Equal(o.createdAt) || !r.updatedAt.Equal(o.updatedAt) {
		return false
	}
	if len(r.attrs) != len(o.attrs) {
		return false
	}
	for k, v := range r.attrs {
		ov, ok := o.attrs[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders the record as "[Kind] (id) {...}".
func (r *Record) String() string {
	m := r.ToFlatMap()
	delete(m, KeyClass)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("[%s] (%s) %v", r.kind, r.id, map[string]any(m))
	}
	return fmt.Sprintf("[%s] (%s) %s", r.kind, r.id, b)
}
