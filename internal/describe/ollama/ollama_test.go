package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/pingallery/internal/describe"
	"github.com/vbonduro/pingallery/internal/domain"
)

var _ describe.Describer = (*OllamaDescriber)(nil)

var trips = domain.Collection{
	Name:   "Trips",
	Photos: []domain.Photo{{ID: "p1", Title: "mountain cabin"}},
}

func TestOllamaDescribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "llama3.2", req.Model)
		assert.Contains(t, req.Prompt, "mountain cabin")
		assert.False(t, req.Stream)

		resp := map[string]interface{}{
			"model":    req.Model,
			"response": "Quiet cabins above the tree line.",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	d := NewOllamaDescriber(server.URL, "llama3.2")
	got, err := d.Describe(context.Background(), trips)
	require.NoError(t, err)
	assert.Equal(t, "Quiet cabins above the tree line.", got)
}

func TestOllamaDescribeNetworkError(t *testing.T) {
	d := NewOllamaDescriber("http://localhost:99999", "llama3.2")

	_, err := d.Describe(context.Background(), trips)
	assert.Error(t, err)
}

func TestOllamaDescribeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllamaDescriber(server.URL, "llama3.2").Describe(context.Background(), trips)
	assert.Error(t, err)
}

func TestOllamaDescribeInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	_, err := NewOllamaDescriber(server.URL, "llama3.2").Describe(context.Background(), trips)
	assert.Error(t, err)
}
