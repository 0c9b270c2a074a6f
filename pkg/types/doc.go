// Package types defines the record model for the hbnb object store: the
// closed set of kinds, the Record entity with its flat-map projection, the
// attribute value types, configuration, and the standard errors shared by the
// registry and the console.
package types
