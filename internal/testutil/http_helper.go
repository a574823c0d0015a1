// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// NewJSONRequest builds a request with body encoded as JSON. A nil body sends no payload;
// an empty authToken sends no Authorization header.
func NewJSONRequest(t *testing.T, method, endpoint string, body interface{}, authToken string) *http.Request {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, endpoint, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return req
}

// Serve runs req through r and decodes the response envelope.
func Serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// MakeJSONRequest is a helper function for making JSON requests in tests.
// A nil body sends no payload; an empty authToken sends no Authorization header.
// It returns the recorder and the decoded response envelope.
func MakeJSONRequest(body interface{}, authToken string, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, endpoint, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return Serve(r, req)
}

// Data returns the data object of an envelope, or nil when it is not an object.
func Data(resp map[string]interface{}) map[string]interface{} {
	data, _ := resp["data"].(map[string]interface{})
	return data
}

// Items returns data.items of a paginated envelope.
func Items(resp map[string]interface{}) []interface{} {
	items, _ := Data(resp)["items"].([]interface{})
	return items
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
