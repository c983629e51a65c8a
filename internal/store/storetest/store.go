// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/weekdump/weekdump/internal/store"
)

// Memory is an in-memory store.DocumentStore. Zero value is not usable;
// call NewMemory.
type Memory struct {
	mu   sync.Mutex
	docs map[string]map[string]store.Document

	// FailNextUpdate makes the next UpdateDocument call return an error,
	// for exercising persistence-failure paths.
	FailNextUpdate bool
	// Updates counts UpdateDocument calls.
	Updates int
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]store.Document)}
}

var _ store.DocumentStore = (*Memory)(nil)

// Seed inserts a document without going through CreateDocument.
func (m *Memory) Seed(collection, id string, data store.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = cloneDoc(id, data)
}

func (m *Memory) collection(name string) map[string]store.Document {
	if m.docs[name] == nil {
		m.docs[name] = make(map[string]store.Document)
	}
	return m.docs[name]
}

func (m *Memory) GetDocument(ctx context.Context, collection, id string) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection)[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(id, doc), nil
}

func (m *Memory) CreateDocument(ctx context.Context, collection, id string, data store.Document) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	if _, ok := col[id]; ok {
		return nil, fmt.Errorf("document %s/%s already exists", collection, id)
	}
	col[id] = cloneDoc(id, data)
	return cloneDoc(id, col[id]), nil
}

func (m *Memory) UpdateDocument(ctx context.Context, collection, id string, partial store.Document) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Updates++
	if m.FailNextUpdate {
		m.FailNextUpdate = false
		return nil, fmt.Errorf("simulated update failure")
	}

	doc, ok := m.collection(collection)[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range partial {
		doc[k] = v
	}
	return cloneDoc(id, doc), nil
}

func (m *Memory) DeleteDocument(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	if _, ok := col[id]; !ok {
		return store.ErrNotFound
	}
	delete(col, id)
	return nil
}

func (m *Memory) ListDocuments(ctx context.Context, collection string, queries ...store.Query) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []store.Document
	for id, doc := range m.collection(collection) {
		match := true
		for _, q := range queries {
			if doc[q.Field] != q.Value {
				match = false
				break
			}
		}
		if match {
			out = append(out, cloneDoc(id, doc))
		}
	}
	return out, nil
}

func cloneDoc(id string, doc store.Document) store.Document {
	out := make(store.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["$id"] = id
	return out
}

// Files is an in-memory store.FileStore recording uploads.
type Files struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

// NewFiles creates an empty in-memory file store.
func NewFiles() *Files {
	return &Files{uploads: make(map[string][]byte)}
}

var _ store.FileStore = (*Files)(nil)

func (f *Files) UploadFile(ctx context.Context, bucket, fileID, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[bucket+"/"+fileID] = data
	return nil
}

func (f *Files) FileViewURL(bucket, fileID string, width, height int) string {
	return fmt.Sprintf("https://files.test/%s/%s", bucket, fileID)
}

// UploadCount returns the number of stored files.
func (f *Files) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}
