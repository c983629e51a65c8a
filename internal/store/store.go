package store

import (
	"context"
	"errors"
)

// Collection ids used by the application.
const (
	CollectionUserData  = "userdata"
	CollectionGroupData = "groupdata"
	CollectionPhotoData = "photodata"
)

// BucketPhotos is the storage bucket holding daily photos.
const BucketPhotos = "photos"

// ErrNotFound is returned when a document or file does not exist.
var ErrNotFound = errors.New("store: not found")

// Document is a flat record in a collection. Values are JSON-compatible
// scalars; nested structures (members, day-scoped blobs) are stored as
// JSON-encoded strings and decoded at the repository edge, never in core
// logic.
type Document map[string]any

// String returns the value of key as a string, or "" if absent or not a
// string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Bool returns the value of key as a bool. Absent or non-bool values are
// false.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Int returns the value of key as an int, accepting the float64 that JSON
// decoding produces for numbers.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Query is a simple equality filter for ListDocuments.
type Query struct {
	Field string
	Value any
}

// Equal builds an equality query on field.
func Equal(field string, value any) Query {
	return Query{Field: field, Value: value}
}

// DocumentStore defines what the repositories need from the backing
// document database. Updates are partial: only the supplied fields are
// written, whole-field last-writer-wins (no version check).
type DocumentStore interface {
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	CreateDocument(ctx context.Context, collection, id string, data Document) (Document, error)
	UpdateDocument(ctx context.Context, collection, id string, partial Document) (Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	ListDocuments(ctx context.Context, collection string, queries ...Query) ([]Document, error)
}

// FileStore defines what the photo flow needs from blob storage.
type FileStore interface {
	UploadFile(ctx context.Context, bucket, fileID, name string, data []byte) error
	// FileViewURL returns a public view URL for the file. Width and height
	// are optional preview hints; zero means original size.
	FileViewURL(bucket, fileID string, width, height int) string
}
