package ragapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengrove/ragchat/internal/domain"
)

func decodeJSONBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func TestClientSendsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode([]AssistantRecord{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	_, err := client.ListAssistants(context.Background())
	require.NoError(t, err)
}

func TestClientOmitsAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]AssistantRecord{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ListAssistants(context.Background())
	require.NoError(t, err)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Chat(context.Background(), ChatRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestListAssistantsCaches(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode([]AssistantRecord{{AssistantID: "asst-1", Name: "Helper"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	ctx := context.Background()

	first, err := client.ListAssistants(ctx)
	require.NoError(t, err)
	second, err := client.ListAssistants(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)
}

func TestGetAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]AssistantRecord{
			{AssistantID: "asst-1", Name: "Helper", KnowledgeBases: []string{"kb-1"}},
			{AssistantID: "asst-2", Name: "Other"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	record, err := client.GetAssistant(context.Background(), "asst-2")
	require.NoError(t, err)
	assert.Equal(t, "Other", record.Name)

	_, err = client.GetAssistant(context.Background(), "asst-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssistantNotFound)
}

func TestChatForcesStreamOff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, decodeJSONBody(r, &req))
		assert.False(t, req.Stream)
		json.NewEncoder(w).Encode(ChatResponse{Answer: "ok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	resp, err := client.Chat(context.Background(), ChatRequest{Query: "q", Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
}

func TestChatEnhancedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/enhanced", r.URL.Path)
		var req ChatRequest
		require.NoError(t, decodeJSONBody(r, &req))
		assert.True(t, req.UseEnhancedContext)
		json.NewEncoder(w).Encode(ChatResponse{Answer: "enhanced"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	resp, err := client.ChatEnhanced(context.Background(), ChatRequest{Query: "q", UseEnhancedContext: true})
	require.NoError(t, err)
	assert.Equal(t, "enhanced", resp.Answer)
}

func TestListMessagesPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/sess-1/messages", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		json.NewEncoder(w).Encode([]MessageRecord{{MessageID: "m1", Role: "user", Content: "hi"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	records, err := client.ListMessages(context.Background(), "sess-1", 100, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].MessageID)
}

func TestUpdateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sessions/sess-1", r.URL.Path)
		var req UpdateSessionRequest
		require.NoError(t, decodeJSONBody(r, &req))
		require.NotNil(t, req.Title)
		assert.Equal(t, "Renamed", *req.Title)
		json.NewEncoder(w).Encode(SessionRecord{SessionID: "sess-1", Title: "Renamed"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	title := "Renamed"
	record, err := client.UpdateSession(context.Background(), "sess-1", UpdateSessionRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", record.Title)
}
