package types

import (
	"fmt"
	"sort"
)

// Kind names the concrete entity type of a record. The set is closed: a
// kind exists only if it has an entry in kindTable.
type Kind string

// Standard kinds.
const (
	KindBaseModel Kind = "BaseModel"
	KindUser      Kind = "User"
	KindState     Kind = "State"
	KindCity      Kind = "City"
	KindAmenity   Kind = "Amenity"
	KindPlace     Kind = "Place"
	KindReview    Kind = "Review"
)

// Schema declares the attributes a kind accepts and their value types.
type Schema struct {
	Kind       Kind
	Attributes map[string]string // attribute name -> ValueType constant
}

// ValueType returns the declared value type of name, if any.
func (s Schema) ValueType(name string) (string, bool) {
	vt, ok := s.Attributes[name]
	return vt, ok
}

// Open reports whether the schema declares nothing and so accepts any
// attribute name.
func (s Schema) Open() bool { return len(s.Attributes) == 0 }

// kindTable is the discriminator-to-schema dispatch table used by Construct
// and FromFlatMap. Adding a kind means adding an entry here.
var kindTable = map[Kind]Schema{
	KindBaseModel: {Kind: KindBaseModel},
	KindUser: {Kind: KindUser, Attributes: map[string]string{
		"email":      ValueTypeText,
		"password":   ValueTypeText,
		"first_name": ValueTypeText,
		"last_name":  ValueTypeText,
	}},
	KindState: {Kind: KindState, Attributes: map[string]string{
		"name": ValueTypeText,
	}},
	KindCity: {Kind: KindCity, Attributes: map[string]string{
		"state_id": ValueTypeText,
		"name":     ValueTypeText,
	}},
	KindAmenity: {Kind: KindAmenity, Attributes: map[string]string{
		"name": ValueTypeText,
	}},
	KindPlace: {Kind: KindPlace, Attributes: map[string]string{
		"city_id":          ValueTypeText,
		"user_id":          ValueTypeText,
		"name":             ValueTypeText,
		"description":      ValueTypeText,
		"number_rooms":     ValueTypeInteger,
		"number_bathrooms": ValueTypeInteger,
		"max_guest":        ValueTypeInteger,
		"price_by_night":   ValueTypeInteger,
		"latitude":         ValueTypeFloat,
		"longitude":        ValueTypeFloat,
	}},
	KindReview: {Kind: KindReview, Attributes: map[string]string{
		"place_id": ValueTypeText,
		"user_id":  ValueTypeText,
		"text":     ValueTypeText,
	}},
}

// LookupKind resolves a user-supplied kind name against the closed set.
func LookupKind(name string) (Kind, bool) {
	k := Kind(name)
	_, ok := kindTable[k]
	return k, ok
}

// CheckAttributeName reports whether user input may set name on kind.
// Specialized kinds accept only their declared attributes; BaseModel accepts
// any name. Identity and timestamp fields are left to SetAttribute.
func CheckAttributeName(kind Kind, name string) error {
	schema, ok := kindTable[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if name == "" {
		return ErrInvalidName
	}
	if immutableKeys[name] || schema.Open() {
		return nil
	}
	if _, declared := schema.Attributes[name]; !declared {
		return fmt.Errorf("%w: %s has no attribute %q", ErrUnknownAttribute, kind, name)
	}
	return nil
}

// SchemaFor returns the schema registered for kind.
func SchemaFor(kind Kind) (Schema, bool) {
	s, ok := kindTable[kind]
	return s, ok
}

// Kinds lists every registered kind in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
