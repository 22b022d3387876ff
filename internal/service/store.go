package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/domain"
	"github.com/opengrove/ragchat/internal/ragapi"
)

// Backend is the slice of the RAG API the store depends on.
type Backend interface {
	CreateSession(ctx context.Context, req ragapi.CreateSessionRequest) (*ragapi.SessionRecord, error)
	ListSessions(ctx context.Context, datasetID, assistantID string) ([]ragapi.SessionRecord, error)
	UpdateSession(ctx context.Context, sessionID string, req ragapi.UpdateSessionRequest) (*ragapi.SessionRecord, error)
	ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]ragapi.MessageRecord, error)
	Chat(ctx context.Context, req ragapi.ChatRequest) (*ragapi.ChatResponse, error)
	ChatEnhanced(ctx context.Context, req ragapi.ChatRequest) (*ragapi.ChatResponse, error)
	ChatStream(ctx context.Context, req ragapi.ChatRequest, onChunk ragapi.StreamHandler) (*ragapi.ChatResponse, error)
}

// errorReply is appended as an assistant message when a send fails.
const errorReply = "Sorry, I ran into a problem answering that. Please try again."

// ChatSessionStore owns the in-memory view of the selected assistant, its
// session list, and the messages of the selected session, and orchestrates
// message sends against the backend. The mutex guards state only and is
// never held across a backend call, so the intermediate states of a send
// (optimistic user message, typing placeholder) are observable in order.
type ChatSessionStore struct {
	backend Backend

	mu        sync.Mutex
	assistant *domain.Assistant
	session   *domain.ChatSession
	sessions  []domain.ChatSession
	messages  []domain.Message
	inFlight  map[string]bool
}

func NewChatSessionStore(backend Backend) *ChatSessionStore {
	return &ChatSessionStore{
		backend:  backend,
		inFlight: make(map[string]bool),
	}
}

// Assistant returns the currently selected assistant, or nil.
func (s *ChatSessionStore) Assistant() *domain.Assistant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistant
}

// Session returns a copy of the currently selected session, or nil.
func (s *ChatSessionStore) Session() *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// Sessions returns a snapshot of the session list.
func (s *ChatSessionStore) Sessions() []domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Messages returns a snapshot of the selected session's messages.
func (s *ChatSessionStore) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SelectAssistant replaces the selected assistant and reloads the session
// list for it. Passing nil clears the assistant, the sessions, and the
// selection. No session is created here.
func (s *ChatSessionStore) SelectAssistant(ctx context.Context, assistant *domain.Assistant) {
	s.mu.Lock()
	s.assistant = assistant
	s.mu.Unlock()

	s.reloadSessions(ctx)
}

// reloadSessions fetches the session list for the selected assistant. A
// listing failure is non-fatal: the list empties, the error is logged, and
// the operator can retry by reselecting. A selected session that is absent
// from the fresh listing was deleted externally, so the selection and its
// messages are cleared.
func (s *ChatSessionStore) reloadSessions(ctx context.Context) {
	s.mu.Lock()
	assistant := s.assistant
	s.mu.Unlock()

	if assistant == nil {
		s.mu.Lock()
		s.sessions = nil
		s.session = nil
		s.messages = nil
		s.mu.Unlock()
		return
	}

	datasetID, ok := assistant.PrimaryKnowledgeBase()
	if !ok {
		slog.Error("reload sessions", "error", domain.ErrNoKnowledgeBase, "assistant_id", assistant.ID)
		s.mu.Lock()
		s.sessions = nil
		s.mu.Unlock()
		return
	}

	records, err := s.backend.ListSessions(ctx, datasetID, assistant.ID)
	if err != nil {
		slog.Error("list sessions", "error", err, "assistant_id", assistant.ID)
		s.mu.Lock()
		s.sessions = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.sessions = make([]domain.ChatSession, len(records))
	for i, r := range records {
		s.sessions[i] = sessionFromRecord(r)
	}
	if s.session != nil && !containsSession(s.sessions, s.session.ID) {
		s.session = nil
		s.messages = nil
	}
	s.mu.Unlock()
}

// CreateNewSession creates a session on the backend and selects it. Session
// identity is always server-assigned; nothing is added locally before the
// backend confirms. An empty name falls back to "New Chat N".
func (s *ChatSessionStore) CreateNewSession(ctx context.Context, name string) (*domain.ChatSession, error) {
	s.mu.Lock()
	assistant := s.assistant
	count := len(s.sessions)
	s.mu.Unlock()

	if assistant == nil {
		return nil, domain.ErrNoAssistant
	}
	datasetID, ok := assistant.PrimaryKnowledgeBase()
	if !ok {
		return nil, domain.ErrNoKnowledgeBase
	}

	title := name
	if title == "" {
		title = fmt.Sprintf("New Chat %d", count+1)
	}

	record, err := s.backend.CreateSession(ctx, ragapi.CreateSessionRequest{
		DatasetID:   datasetID,
		Title:       title,
		AssistantID: assistant.ID,
	})
	if err != nil {
		slog.Error("create session", "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	session := sessionFromRecord(*record)
	if session.DatasetID == "" {
		session.DatasetID = datasetID
	}
	if session.AssistantID == "" {
		session.AssistantID = assistant.ID
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	selected := session
	s.session = &selected
	s.messages = nil
	s.mu.Unlock()

	return &session, nil
}

// FindSession returns the session with the given id from the current list,
// or ErrSessionNotFound when the listing no longer carries it.
func (s *ChatSessionStore) FindSession(id string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ID == id {
			found := session
			return &found, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

// SelectSession sets the selection and reloads its messages, paging through
// the full history. Passing nil clears the selection. A message fetch
// failure leaves the list empty and is logged, not returned.
func (s *ChatSessionStore) SelectSession(ctx context.Context, session *domain.ChatSession) {
	if session == nil {
		s.mu.Lock()
		s.session = nil
		s.messages = nil
		s.mu.Unlock()
		return
	}

	selected := *session
	s.mu.Lock()
	s.session = &selected
	s.messages = nil
	s.mu.Unlock()

	var msgs []domain.Message
	for offset := 0; ; {
		records, err := s.backend.ListMessages(ctx, session.ID, config.MessagePageSize, offset)
		if err != nil {
			slog.Error("list messages", "error", err, "session_id", session.ID)
			return
		}
		for _, r := range records {
			msgs = append(msgs, messageFromRecord(r))
		}
		if len(records) < config.MessagePageSize {
			break
		}
		offset += len(records)
	}

	s.mu.Lock()
	if s.session != nil && s.session.ID == session.ID {
		s.messages = msgs
	}
	s.mu.Unlock()
}

// AddMessage assigns a client-generated id and appends the message locally.
// The selected session's messageCount is bumped; the first user message of a
// session triggers an auto-rename, later user messages refresh the
// lastMessage preview.
func (s *ChatSessionStore) AddMessage(msg domain.Message) domain.Message {
	s.mu.Lock()
	created, renameTitle := s.appendLocked(msg, true)
	s.mu.Unlock()

	if renameTitle != "" {
		s.renameSession(created.SessionID, renameTitle)
	}
	return created
}

// sendOptions selects the endpoint variant for one send cycle.
type sendOptions struct {
	enhanced          bool
	additionalContext string
	onChunk           ragapi.StreamHandler // non-nil selects the streaming endpoint
}

// SendMessageToAssistant runs the full request cycle for one turn: the user
// message and a typing placeholder are appended optimistically, the backend
// answers, the placeholder is removed, and the assistant (or error) message
// is appended. Send failures are surfaced inline and also returned so the
// caller can react.
func (s *ChatSessionStore) SendMessageToAssistant(ctx context.Context, content, sessionID, knowledgeBaseID string) (*domain.Message, error) {
	return s.send(ctx, content, sessionID, knowledgeBaseID, sendOptions{})
}

// SendEnhancedMessageToAssistant is SendMessageToAssistant against the
// enhanced-context endpoint, forwarding extra context to the backend.
func (s *ChatSessionStore) SendEnhancedMessageToAssistant(ctx context.Context, content, sessionID, knowledgeBaseID, additionalContext string) (*domain.Message, error) {
	return s.send(ctx, content, sessionID, knowledgeBaseID, sendOptions{
		enhanced:          true,
		additionalContext: additionalContext,
	})
}

// StreamMessageToAssistant is the streaming variant of the send cycle:
// identical optimistic ordering, but answer text is forwarded to onChunk as
// it arrives.
func (s *ChatSessionStore) StreamMessageToAssistant(ctx context.Context, content, sessionID, knowledgeBaseID string, onChunk ragapi.StreamHandler) (*domain.Message, error) {
	return s.send(ctx, content, sessionID, knowledgeBaseID, sendOptions{onChunk: onChunk})
}

func (s *ChatSessionStore) send(ctx context.Context, content, sessionID, knowledgeBaseID string, opts sendOptions) (*domain.Message, error) {
	s.mu.Lock()
	if s.assistant == nil && s.session == nil {
		// Nothing selected: a silent no-op, not an error.
		s.mu.Unlock()
		return nil, nil
	}
	if s.inFlight[sessionID] {
		s.mu.Unlock()
		return nil, domain.ErrSendInFlight
	}
	s.inFlight[sessionID] = true
	assistant := s.assistant

	// 1. Optimistic user message, visible before any network round trip.
	_, renameTitle := s.appendLocked(domain.Message{
		SessionID: sessionID,
		Type:      domain.MessageTypeUser,
		Content:   content,
	}, true)

	// 2. Typing placeholder, exactly one per call. Placeholders are
	// transient and do not count toward messageCount.
	typing, _ := s.appendLocked(domain.Message{
		SessionID: sessionID,
		Type:      domain.MessageTypeAssistant,
		Content:   domain.TypingContent,
	}, false)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, sessionID)
		s.mu.Unlock()
	}()

	if renameTitle != "" {
		s.renameSession(sessionID, renameTitle)
	}

	// 3. Assistant model settings with fixed fallbacks.
	req := buildChatRequest(assistant, content, sessionID, knowledgeBaseID, opts)

	// 4. Backend call.
	var resp *ragapi.ChatResponse
	var err error
	switch {
	case opts.onChunk != nil:
		resp, err = s.backend.ChatStream(ctx, req, opts.onChunk)
	case opts.enhanced:
		resp, err = s.backend.ChatEnhanced(ctx, req)
	default:
		resp, err = s.backend.Chat(ctx, req)
	}

	if err != nil {
		// 5+8. The placeholder always goes before anything else is
		// inserted; the failure is shown inline and still propagates.
		s.mu.Lock()
		s.removeMessageLocked(typing.ID)
		s.appendLocked(domain.Message{
			SessionID: sessionID,
			Type:      domain.MessageTypeAssistant,
			Content:   errorReply,
		}, true)
		s.mu.Unlock()
		return nil, err
	}

	// 5. Placeholder out before the real result goes in.
	s.mu.Lock()
	s.removeMessageLocked(typing.ID)

	// 6+7. Server-confirmed records win over the flat answer shape.
	var reply domain.Message
	if resp.Confirmed() {
		s.reconcileUserMessageLocked(sessionID, *resp.UserMessage)
		reply = messageFromRecord(*resp.AssistantMessage)
		if reply.SessionID == "" {
			reply.SessionID = sessionID
		}
		reply, _ = s.appendLocked(reply, true)
	} else {
		reply, _ = s.appendLocked(domain.Message{
			SessionID: sessionID,
			Type:      domain.MessageTypeAssistant,
			Content:   resp.Answer,
			Passages:  passagesFromRecords(resp.Passages),
		}, true)
	}
	s.mu.Unlock()

	return &reply, nil
}

// appendLocked appends a message, assigning a client id and timestamp where
// missing. With bump set, the owning session's messageCount is incremented
// and user messages refresh the lastMessage preview. The returned title is
// non-empty when this was the session's first user message and the session
// should be renamed after the lock is released.
func (s *ChatSessionStore) appendLocked(msg domain.Message, bump bool) (domain.Message, string) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.SessionID == "" && s.session != nil {
		msg.SessionID = s.session.ID
	}

	renameTitle := ""
	firstUser := msg.Type == domain.MessageTypeUser && !s.hasUserMessageLocked()

	s.messages = append(s.messages, msg)

	if bump {
		s.bumpSessionLocked(msg.SessionID)
		if firstUser {
			renameTitle = DeriveTitle(msg.Content)
		} else if msg.Type == domain.MessageTypeUser {
			s.setLastMessageLocked(msg.SessionID, msg.Content)
		}
	}
	return msg, renameTitle
}

func (s *ChatSessionStore) removeMessageLocked(id string) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// reconcileUserMessageLocked adopts the server-assigned identity for the
// optimistically appended user message of the current turn.
func (s *ChatSessionStore) reconcileUserMessageLocked(sessionID string, record ragapi.MessageRecord) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := &s.messages[i]
		if m.Type == domain.MessageTypeUser && m.SessionID == sessionID {
			if record.MessageID != "" {
				m.ID = record.MessageID
			}
			if !record.CreatedAt.IsZero() {
				m.CreatedAt = record.CreatedAt
			}
			return
		}
	}
}

func (s *ChatSessionStore) hasUserMessageLocked() bool {
	for _, m := range s.messages {
		if m.Type == domain.MessageTypeUser {
			return true
		}
	}
	return false
}

func (s *ChatSessionStore) bumpSessionLocked(sessionID string) {
	if s.session != nil && s.session.ID == sessionID {
		s.session.MessageCount++
	}
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].MessageCount++
		}
	}
}

func (s *ChatSessionStore) setLastMessageLocked(sessionID, content string) {
	if s.session != nil && s.session.ID == sessionID {
		s.session.LastMessage = content
	}
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].LastMessage = content
		}
	}
}

// renameSession applies the title locally right away and pushes it to the
// backend in the background. A failed push is logged, never surfaced.
func (s *ChatSessionStore) renameSession(sessionID, title string) {
	s.mu.Lock()
	if s.session != nil && s.session.ID == sessionID {
		s.session.Title = title
	}
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].Title = title
		}
	}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()
		if _, err := s.backend.UpdateSession(ctx, sessionID, ragapi.UpdateSessionRequest{Title: &title}); err != nil {
			slog.Error("update session title", "error", err, "session_id", sessionID)
		}
	}()
}

func buildChatRequest(assistant *domain.Assistant, content, sessionID, knowledgeBaseID string, opts sendOptions) ragapi.ChatRequest {
	model := config.DefaultModel
	temperature := config.DefaultTemperature
	if assistant != nil {
		if assistant.Model.Model != "" {
			model = assistant.Model.Model
		}
		if assistant.Model.Temperature != 0 {
			temperature = assistant.Model.Temperature
		}
	}

	req := ragapi.ChatRequest{
		Query:       content,
		DatasetID:   knowledgeBaseID,
		SessionID:   sessionID,
		TopK:        config.DefaultTopK,
		ExpandK:     config.DefaultExpandK,
		Mode:        config.RetrievalMode,
		AnswerModel: model,
		Temperature: temperature,
		MaxTokens:   config.DefaultMaxTokens,
		Stream:      false,
	}
	if opts.enhanced {
		req.UseEnhancedContext = true
		req.MaxContextMessages = config.MaxContextMessages
		req.AdditionalContext = opts.additionalContext
	}
	return req
}

func containsSession(sessions []domain.ChatSession, id string) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}
