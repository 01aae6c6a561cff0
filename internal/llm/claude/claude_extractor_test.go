package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverline/internal/config"
	"coverline/internal/domain"
	"coverline/internal/llm"
	"coverline/internal/llm/claude"
	"coverline/internal/port"
)

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.LLMConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
		MaxTokens:    8192,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
		"usage": map[string]interface{}{
			"input_tokens":  1200,
			"output_tokens": 340,
		},
	}
}

func TestClaudeExtractor_Extract_PDF_Success(t *testing.T) {
	modelText := `{"card_name":"Sapphire Reserve","issuer":"Chase","overall_confidence":0.91,` +
		`"benefits":{"tripProtection":{"coverage":"trip delay"}},` +
		`"confidence_scores":{"tripProtection":0.93},` +
		`"source_excerpts":{"tripProtection":["Trip delay reimbursement up to $500"]}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(8192), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		docBlock := content[0].(map[string]interface{})
		assert.Equal(t, "document", docBlock["type"])

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "Sapphire Reserve")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(modelText))
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL)

	out, err := extractor.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4 test content"),
		ContentType: "application/pdf",
		CardName:    "Sapphire Reserve",
	})

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
	assert.Equal(t, 1200, out.Usage.InputTokens)
	assert.Equal(t, 340, out.Usage.OutputTokens)
	require.NotNil(t, out.Result.CardName)
	assert.Equal(t, "Sapphire Reserve", *out.Result.CardName)
	assert.InDelta(t, 0.93, out.Result.ConfidenceScores[domain.BenefitTripProtection], 0.0001)
	assert.Contains(t, out.Result.Benefits, domain.BenefitTripProtection)
}

func TestClaudeExtractor_Extract_ImageBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		block := msg["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "image", block["type"])
		source := block["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])

		_ = json.NewEncoder(w).Encode(textResponse(`{"benefits":{},"confidence_scores":{}}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{0x89, 0x50, 0x4e, 0x47},
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Empty(t, out.Result.Benefits)
}

func TestClaudeExtractor_Extract_UnsupportedContentType(t *testing.T) {
	extractor := newTestExtractor("http://127.0.0.1:0")

	_, err := extractor.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("plain"),
		ContentType: "text/plain",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestClaudeExtractor_Extract_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("Here are the benefits I found: travel insurance"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF"),
		ContentType: "application/pdf",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMalformedOutput))
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestClaudeExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF"),
		ContentType: "application/pdf",
	})

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 30.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeExtractor_Extract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF"),
		ContentType: "application/pdf",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Less(t, len(err.Error()), 400)
}

func TestClaudeExtractor_Extract_MaxTokensStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := textResponse(`{"benefits":`)
		resp["stop_reason"] = "max_tokens"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF"),
		ContentType: "application/pdf",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}
