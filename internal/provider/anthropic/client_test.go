package anthropic

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

func messagesResponse(stopReason, text string) map[string]any {
	return map[string]any{
		"stop_reason": stopReason,
		"content":     []map[string]any{{"type": "text", "text": text}},
	}
}

func pageImage() provider.PageImage {
	return provider.PageImage{Data: []byte("jpeg-bytes"), MIME: "image/jpeg", Page: 1}
}

func TestExtractOK(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		gotBody, _ = json.Marshal(m)
		require.NoError(t, json.NewEncoder(w).Encode(messagesResponse("end_turn",
			`{"formTitle":"Intake","fields":[{"label":"Name","value":"Jane","type":"text","confidence":0.9}]}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "ak-test", BaseURL: srv.URL}, nil)
	out, err := c.Extract(context.Background(), pageImage())
	require.NoError(t, err)

	assert.Equal(t, "ak-test", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	// The page travels as a base64 source block.
	assert.Contains(t, string(gotBody), `"type":"base64"`)
	assert.Contains(t, string(gotBody), `"media_type":"image/jpeg"`)

	assert.Equal(t, "Intake", out.FormTitle)
	require.Len(t, out.Fields, 1)
	assert.Equal(t, "Jane", out.Fields[0].Value)
}

func TestExtractTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(messagesResponse("max_tokens", `{"fields":[`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "ak-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionParse)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "ak-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrProviderRequest)
}

func TestExtractEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"stop_reason": "end_turn", "content": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "ak-test", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), pageImage())
	assert.ErrorIs(t, err, common.ErrExtractionParse)
}
