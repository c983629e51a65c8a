package appwrite

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekdump/weekdump/internal/store"
)

// capturedRequest records what the adapter sent for assertion after the call.
type capturedRequest struct {
	method  string
	path    string
	query   string
	headers http.Header
	body    []byte
}

func newTestServer(t *testing.T, status int, response string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.headers = r.Header.Clone()
		captured.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		Endpoint:   srv.URL,
		ProjectID:  "proj",
		APIKey:     "key",
		DatabaseID: "db",
	})
	return client, captured
}

func TestGetDocument(t *testing.T) {
	client, captured := newTestServer(t, http.StatusOK,
		`{"$id":"g1","name":"Dump Squad","activityactive":true}`)

	doc, err := NewDatabases(client).GetDocument(context.Background(), "groupdata", "g1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, "/databases/db/collections/groupdata/documents/g1", captured.path)
	assert.Equal(t, "proj", captured.headers.Get("X-Appwrite-Project"))
	assert.Equal(t, "key", captured.headers.Get("X-Appwrite-Key"))

	assert.Equal(t, "g1", doc.String("$id"))
	assert.Equal(t, "Dump Squad", doc.String("name"))
	assert.True(t, doc.Bool("activityactive"))
}

func TestGetDocument_NotFound(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound,
		`{"message":"Document with the requested ID could not be found."}`)

	_, err := NewDatabases(client).GetDocument(context.Background(), "groupdata", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateDocument(t *testing.T) {
	client, captured := newTestServer(t, http.StatusCreated, `{"$id":"g1","name":"Dump Squad"}`)

	_, err := NewDatabases(client).CreateDocument(context.Background(), "groupdata", "g1", store.Document{
		"$id":  "should-be-stripped",
		"name": "Dump Squad",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/databases/db/collections/groupdata/documents", captured.path)

	var payload struct {
		DocumentID string         `json:"documentId"`
		Data       map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, "g1", payload.DocumentID)
	assert.Equal(t, "Dump Squad", payload.Data["name"])
	assert.NotContains(t, payload.Data, "$id", "metadata keys never go out in the data payload")
}

func TestUpdateDocument_PartialPayload(t *testing.T) {
	client, captured := newTestServer(t, http.StatusOK, `{"$id":"g1","releaseresults":true}`)

	_, err := NewDatabases(client).UpdateDocument(context.Background(), "groupdata", "g1", store.Document{
		"releaseresults": true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, captured.method)
	assert.Equal(t, "/databases/db/collections/groupdata/documents/g1", captured.path)

	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, map[string]any{"releaseresults": true}, payload.Data)
}

func TestDeleteDocument(t *testing.T) {
	client, captured := newTestServer(t, http.StatusNoContent, "")

	require.NoError(t, NewDatabases(client).DeleteDocument(context.Background(), "groupdata", "g1"))
	assert.Equal(t, http.MethodDelete, captured.method)
	assert.Equal(t, "/databases/db/collections/groupdata/documents/g1", captured.path)
}

func TestListDocuments_QueryEncoding(t *testing.T) {
	client, captured := newTestServer(t, http.StatusOK,
		`{"total":2,"documents":[{"$id":"p1","userid":"alice"},{"$id":"p2","userid":"alice"}]}`)

	docs, err := NewDatabases(client).ListDocuments(context.Background(), "photodata",
		store.Equal("userid", "alice"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p1", docs[0].String("$id"))

	params, err := url.ParseQuery(captured.query)
	require.NoError(t, err)
	raw := params["queries[]"]
	require.Len(t, raw, 1)

	var query map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &query))
	assert.Equal(t, "equal", query["method"])
	assert.Equal(t, "userid", query["attribute"])
	assert.Equal(t, []any{"alice"}, query["values"])
}

func TestMakeRequest_APIError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusUnauthorized, `{"message":"bad key"}`)

	_, err := NewDatabases(client).GetDocument(context.Background(), "groupdata", "g1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, IsNotFound(apiErr))
}
