package ragapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverResponseWholeJSON(t *testing.T) {
	raw := `{"answer": "full answer", "model": "m1", "top_k": 3, "mode": "flat", "passages": [{"id": "p1", "content": "ctx"}], "session_id": "sess-1"}`

	resp := recoverResponse(raw, ChatRequest{AnswerModel: "ignored", TopK: 9})
	require.NotNil(t, resp)

	assert.Equal(t, "full answer", resp.Answer)
	assert.Equal(t, "m1", resp.Model)
	assert.Equal(t, 3, resp.TopK)
	assert.Equal(t, "flat", resp.Mode)
	require.Len(t, resp.Passages, 1)
}

func TestRecoverResponseExtractsAnswerFromBrokenJSON(t *testing.T) {
	// Truncated object: not parseable as a whole, but the answer field is
	// intact and carries escapes.
	raw := `{"answer": "line one\nline \"two\"", "passages": [{"id": "p1", "content": "ctx", "score": 0.7}], "model": "m1", "top_`

	resp := recoverResponse(raw, ChatRequest{})
	assert.Equal(t, "line one\nline \"two\"", resp.Answer)
	require.Len(t, resp.Passages, 1)
	assert.Equal(t, "ctx", resp.Passages[0].Content)
}

func TestRecoverResponseBrokenPassagesYieldEmptyList(t *testing.T) {
	raw := `{"answer": "still here", "passages": [{"id": bad]`

	resp := recoverResponse(raw, ChatRequest{})
	assert.Equal(t, "still here", resp.Answer)
	assert.NotNil(t, resp.Passages)
	assert.Empty(t, resp.Passages)
}

func TestRecoverResponseRawTextFallback(t *testing.T) {
	raw := "Just a plain streamed reply with no structure at all."

	resp := recoverResponse(raw, ChatRequest{
		AnswerModel: "m-req",
		TopK:        5,
		Mode:        "tree",
		SessionID:   "sess-1",
	})

	assert.Equal(t, raw, resp.Answer)
	assert.Equal(t, "m-req", resp.Model)
	assert.Equal(t, 5, resp.TopK)
	assert.Equal(t, "tree", resp.Mode)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.NotNil(t, resp.Passages)
	assert.Empty(t, resp.Passages)
}

func TestRecoverResponseEchoFillsOnlyMissingFields(t *testing.T) {
	raw := `{"answer": "a", "model": "m-resp", "session_id": "sess-resp", "passages": []}`

	resp := recoverResponse(raw, ChatRequest{AnswerModel: "m-req", TopK: 7, Mode: "tree", SessionID: "sess-req"})

	// Response values win; request values only backfill zero fields.
	assert.Equal(t, "m-resp", resp.Model)
	assert.Equal(t, "sess-resp", resp.SessionID)
	assert.Equal(t, 7, resp.TopK)
	assert.Equal(t, "tree", resp.Mode)
}

func TestUnescapeJSONString(t *testing.T) {
	assert.Equal(t, "a\nb", unescapeJSONString(`a\nb`))
	assert.Equal(t, `say "hi"`, unescapeJSONString(`say \"hi\"`))
	assert.Equal(t, "tab\there", unescapeJSONString(`tab\there`))
	assert.Equal(t, "plain", unescapeJSONString("plain"))
}
