package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/provider"
)

func chatResponse(finishReason, content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"finish_reason": finishReason,
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func pageImage() provider.PageImage {
	return provider.PageImage{Data: []byte("jpeg-bytes"), MIME: "image/jpeg", Page: 1}
}

func TestExtractOK(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	var gotBodyMap map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBodyMap))
		gotBody, _ = json.Marshal(gotBodyMap)
		require.NoError(t, json.NewEncoder(w).Encode(chatResponse("stop",
			"```json\n{\"formTitle\":\"Intake\",\"fields\":[{\"label\":\"Name\",\"value\":\"Jane\",\"type\":\"text\",\"confidence\":0.9}]}\n```")))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)
	out, err := c.Extract(context.Background(), pageImage())
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBodyMap["model"])
	// The page travels as an inline data URL image part.
	assert.Contains(t, string(gotBody), "data:image/jpeg;base64,")

	assert.Equal(t, "Intake", out.FormTitle)
	require.Len(t, out.Fields, 1)
	assert.Equal(t, "Name", out.Fields[0].Label)
	assert.Equal(t, "Jane", out.Fields[0].Value)
}

func TestExtractTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("length", `{"fields":[`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionParse)
	assert.Contains(t, err.Error(), "length")
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrProviderRequest)
}

func TestExtractNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	assert.ErrorIs(t, err, common.ErrExtractionParse)
}
