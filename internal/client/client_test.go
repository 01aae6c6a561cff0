package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverline/internal/client"
	"coverline/internal/domain"
)

func TestClient_GetStatus(t *testing.T) {
	docID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/documents/"+docID.String()+"/status", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"` + docID.String() + `","processing_status":"failed","error_message":"Download failed: 404","overall_confidence":null}}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", "s3cret", 0)
	snap, err := c.GetStatus(context.Background(), docID)

	require.NoError(t, err)
	assert.Equal(t, docID, snap.DocumentID)
	assert.Equal(t, domain.ProcessingStatusFailed, snap.Status)
	require.NotNil(t, snap.ErrorMessage)
	assert.Equal(t, "Download failed: 404", *snap.ErrorMessage)
	assert.Nil(t, snap.OverallConfidence)
}

func TestClient_GetStatus_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"DOCUMENT_NOT_FOUND","message":"document not found"}}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, "", 0)
	_, err := c.GetStatus(context.Background(), uuid.New())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", apiErr.Code)
}

func TestClient_Extract(t *testing.T) {
	docID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, docID.String(), body["documentId"])

		_, _ = w.Write([]byte(`{"success":true,"message":"Extraction started","documentId":"` + docID.String() + `"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, "", 0)
	require.NoError(t, c.Extract(context.Background(), docID))
}

func TestClient_Extract_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"invalid shared secret"}}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, "wrong", 0)
	err := c.Extract(context.Background(), uuid.New())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
