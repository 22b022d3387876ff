package ragapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDecoderStructuredTail(t *testing.T) {
	var chunks []string
	dec := newStreamDecoder(func(chunk string) {
		chunks = append(chunks, chunk)
	})

	dec.feed("Hello ")
	dec.feed("world")
	dec.feed("\n{\"answer\": \"Hello world\", \"passages\": [{\"id\": \"p1\", \"content\": \"ctx\", \"score\": 0.8}], \"session_id\": \"sess-1\", \"model\": \"m1\"}")

	resp := dec.finish(ChatRequest{})
	require.NotNil(t, resp)

	// The tail is never forwarded as display text.
	assert.Equal(t, []string{"Hello ", "world"}, chunks)

	assert.Equal(t, "Hello world", resp.Answer)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "m1", resp.Model)
	require.Len(t, resp.Passages, 1)
	assert.Equal(t, "ctx", resp.Passages[0].Content)
}

func TestStreamDecoderMalformedTailIsText(t *testing.T) {
	var chunks []string
	dec := newStreamDecoder(func(chunk string) {
		chunks = append(chunks, chunk)
	})

	dec.feed("Here is the answer")
	// Looks like a tail but does not parse; it stays part of the answer.
	bad := "\n{\"passages\": [broken"
	dec.feed(bad)

	resp := dec.finish(ChatRequest{SessionID: "sess-1"})
	require.NotNil(t, resp)

	assert.Equal(t, []string{"Here is the answer", bad}, chunks)
	assert.Equal(t, "Here is the answer"+bad, resp.Answer)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Empty(t, resp.Passages)
}

func TestStreamDecoderNewlineWithoutPassagesIsText(t *testing.T) {
	var chunks []string
	dec := newStreamDecoder(func(chunk string) {
		chunks = append(chunks, chunk)
	})

	dec.feed("line one")
	dec.feed("\nline two")

	resp := dec.finish(ChatRequest{})
	assert.Equal(t, []string{"line one", "\nline two"}, chunks)
	assert.Equal(t, "line one\nline two", resp.Answer)
}

func TestStreamDecoderNilHandler(t *testing.T) {
	dec := newStreamDecoder(nil)
	dec.feed("no handler ")
	dec.feed("still accumulates")

	resp := dec.finish(ChatRequest{})
	assert.Equal(t, "no handler still accumulates", resp.Answer)
}

func TestChatStream(t *testing.T) {
	var gotStream bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, decodeJSONBody(r, &req))
		gotStream = req.Stream

		flusher := w.(http.Flusher)
		w.Write([]byte("Partial "))
		flusher.Flush()
		time.Sleep(10 * time.Millisecond)
		w.Write([]byte("answer"))
		flusher.Flush()
		time.Sleep(10 * time.Millisecond)
		w.Write([]byte("\n{\"answer\": \"Partial answer\", \"passages\": [], \"session_id\": \"sess-9\"}"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	var text string
	resp, err := client.ChatStream(context.Background(), ChatRequest{Query: "q", SessionID: "sess-9"}, func(chunk string) {
		text += chunk
	})
	require.NoError(t, err)

	assert.True(t, gotStream)
	assert.Equal(t, "Partial answer", text)
	assert.Equal(t, "Partial answer", resp.Answer)
	assert.Equal(t, "sess-9", resp.SessionID)
}

func TestChatStreamServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ChatStream(context.Background(), ChatRequest{Query: "q"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
