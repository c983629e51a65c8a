package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/weekdump/weekdump/internal/store"
)

// Databases implements store.DocumentStore against the backend's document
// API. Backend metadata keys ($id, $createdAt, ...) are passed through so
// repositories can read them; data payloads sent on create/update never
// include them.
type Databases struct {
	client *Client
}

// NewDatabases creates a document-store adapter on top of client.
func NewDatabases(client *Client) *Databases {
	return &Databases{client: client}
}

var _ store.DocumentStore = (*Databases)(nil)

func (d *Databases) collectionPath(collection string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", d.client.cfg.DatabaseID, collection)
}

// GetDocument fetches a single document by id.
func (d *Databases) GetDocument(ctx context.Context, collection, id string) (store.Document, error) {
	body, err := d.client.makeRequest(ctx, http.MethodGet, d.collectionPath(collection)+"/"+id, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(body)
}

// CreateDocument creates a document with the given id and data.
func (d *Databases) CreateDocument(ctx context.Context, collection, id string, data store.Document) (store.Document, error) {
	payload, err := json.Marshal(map[string]any{
		"documentId": id,
		"data":       stripMeta(data),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document data: %w", err)
	}

	body, err := d.client.makeRequest(ctx, http.MethodPost, d.collectionPath(collection), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(body)
}

// UpdateDocument applies a partial update; only the supplied fields change.
func (d *Databases) UpdateDocument(ctx context.Context, collection, id string, partial store.Document) (store.Document, error) {
	payload, err := json.Marshal(map[string]any{"data": stripMeta(partial)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document data: %w", err)
	}

	body, err := d.client.makeRequest(ctx, http.MethodPatch, d.collectionPath(collection)+"/"+id, payload)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(body)
}

// DeleteDocument removes a document by id.
func (d *Databases) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := d.client.makeRequest(ctx, http.MethodDelete, d.collectionPath(collection)+"/"+id, nil)
	if err != nil {
		if IsNotFound(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// ListDocuments lists documents matching the equality queries.
func (d *Databases) ListDocuments(ctx context.Context, collection string, queries ...store.Query) ([]store.Document, error) {
	endpoint := d.collectionPath(collection)
	if len(queries) > 0 {
		params := url.Values{}
		for _, q := range queries {
			encoded, err := encodeQuery(q)
			if err != nil {
				return nil, err
			}
			params.Add("queries[]", encoded)
		}
		endpoint += "?" + params.Encode()
	}

	body, err := d.client.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", collection, err)
	}

	var list struct {
		Total     int              `json:"total"`
		Documents []store.Document `json:"documents"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode document list: %w", err)
	}
	return list.Documents, nil
}

// encodeQuery serializes an equality filter in the backend's query format.
func encodeQuery(q store.Query) (string, error) {
	if q.Field == "" {
		return "", errors.New("query field must not be empty")
	}
	encoded, err := json.Marshal(map[string]any{
		"method":    "equal",
		"attribute": q.Field,
		"values":    []any{q.Value},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode query on %s: %w", q.Field, err)
	}
	return string(encoded), nil
}

func decodeDocument(body []byte) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// stripMeta drops backend metadata keys from an outgoing payload.
func stripMeta(data store.Document) store.Document {
	out := make(store.Document, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		out[k] = v
	}
	return out
}
