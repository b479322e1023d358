package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carechat-backend/internal/models"
	"carechat-backend/internal/prompt"
)

// mockStore is an in-memory append-only store with injectable failures.
type mockStore struct {
	messages      []models.Message
	nextID        int64
	appendErrs    map[int]error // keyed by zero-based append call index
	historyErr    error
	appendCalls   int
	historyCalls  int
	clockSequence int
}

func newMockStore() *mockStore {
	return &mockStore{appendErrs: map[int]error{}}
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }

func (m *mockStore) AppendMessage(_ context.Context, userID string, role models.Role, content string) (int64, error) {
	idx := m.appendCalls
	m.appendCalls++
	if err, ok := m.appendErrs[idx]; ok {
		return 0, err
	}
	m.nextID++
	m.clockSequence++
	m.messages = append(m.messages, models.Message{
		ID:        m.nextID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Unix(int64(m.clockSequence), 0),
	})
	return m.nextID, nil
}

func (m *mockStore) GetHistory(_ context.Context, userID string) ([]models.Message, error) {
	m.historyCalls++
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	out := []models.Message{}
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockStore) Close() {}

type stubGateway struct {
	reply    string
	err      error
	captured []models.Message
	calls    int
}

func (g *stubGateway) Complete(_ context.Context, messages []models.Message) (string, error) {
	g.calls++
	g.captured = messages
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, code, svcErr.Code)
}

func TestChatPersistsUserThenAssistant(t *testing.T) {
	st := newMockStore()
	gw := &stubGateway{reply: "Hi there"}
	svc := NewChatService(st, gw, nil)

	reply, err := svc.Chat(context.Background(), "u1", "Hello")
	require.NoError(t, err)
	require.Equal(t, "Hi there", reply)

	require.Len(t, st.messages, 2)
	require.Equal(t, models.RoleUser, st.messages[0].Role)
	require.Equal(t, "Hello", st.messages[0].Content)
	require.Equal(t, models.RoleAssistant, st.messages[1].Role)
	require.Equal(t, "Hi there", st.messages[1].Content)
	require.Greater(t, st.messages[1].ID, st.messages[0].ID)
}

func TestChatAssemblesPreambleHistoryAndMessage(t *testing.T) {
	st := newMockStore()
	_, err := st.AppendMessage(context.Background(), "u1", models.RoleUser, "earlier question")
	require.NoError(t, err)
	_, err = st.AppendMessage(context.Background(), "u1", models.RoleAssistant, "earlier answer")
	require.NoError(t, err)

	gw := &stubGateway{reply: "ok"}
	svc := NewChatService(st, gw, nil)

	_, err = svc.Chat(context.Background(), "u1", "new question")
	require.NoError(t, err)

	require.Len(t, gw.captured, 4)
	require.Equal(t, models.RoleSystem, gw.captured[0].Role)
	require.Equal(t, prompt.Preamble, gw.captured[0].Content)
	require.Equal(t, "earlier question", gw.captured[1].Content)
	require.Equal(t, "earlier answer", gw.captured[2].Content)
	require.Equal(t, models.RoleUser, gw.captured[3].Role)
	require.Equal(t, "new question", gw.captured[3].Content)
}

func TestChatValidation(t *testing.T) {
	st := newMockStore()
	svc := NewChatService(st, &stubGateway{reply: "ok"}, nil)

	_, err := svc.Chat(context.Background(), "", "Hello")
	requireCode(t, err, ErrorValidation)

	_, err = svc.Chat(context.Background(), "u1", "   ")
	requireCode(t, err, ErrorValidation)

	require.Zero(t, st.appendCalls, "validation failures must not touch the store")
}

func TestChatUserPersistFailureHardFails(t *testing.T) {
	st := newMockStore()
	st.appendErrs[0] = errors.New("disk full")
	gw := &stubGateway{reply: "ok"}
	svc := NewChatService(st, gw, nil)

	_, err := svc.Chat(context.Background(), "u1", "Hello")
	requireCode(t, err, ErrorStorage)
	require.Zero(t, gw.calls, "gateway must not be called when the user turn was not persisted")
	require.Empty(t, st.messages)
}

func TestChatGatewayFailureKeepsUserTurn(t *testing.T) {
	st := newMockStore()
	gw := &stubGateway{err: errors.New("provider unreachable")}
	svc := NewChatService(st, gw, nil)

	_, err := svc.Chat(context.Background(), "u1", "Hello")
	requireCode(t, err, ErrorGateway)

	require.Len(t, st.messages, 1)
	require.Equal(t, models.RoleUser, st.messages[0].Role)
}

func TestChatReplyPersistFailureStillReturnsReply(t *testing.T) {
	st := newMockStore()
	st.appendErrs[1] = errors.New("disk full")
	gw := &stubGateway{reply: "Hi there"}
	svc := NewChatService(st, gw, nil)

	reply, err := svc.Chat(context.Background(), "u1", "Hello")
	require.NoError(t, err)
	require.Equal(t, "Hi there", reply)

	// Only the user turn made it to the store.
	require.Len(t, st.messages, 1)
	require.Equal(t, models.RoleUser, st.messages[0].Role)
}

func TestChatAppliesHistoryWindow(t *testing.T) {
	st := newMockStore()
	ctx := context.Background()
	for _, c := range []string{"q1", "a1", "q2", "a2"} {
		role := models.RoleUser
		if c[0] == 'a' {
			role = models.RoleAssistant
		}
		_, err := st.AppendMessage(ctx, "u1", role, c)
		require.NoError(t, err)
	}

	gw := &stubGateway{reply: "ok"}
	svc := NewChatService(st, gw, prompt.LastN{N: 2})

	_, err := svc.Chat(ctx, "u1", "q3")
	require.NoError(t, err)

	// Preamble + 2 windowed turns + new message.
	require.Len(t, gw.captured, 4)
	require.Equal(t, "q2", gw.captured[1].Content)
	require.Equal(t, "a2", gw.captured[2].Content)
	require.Equal(t, "q3", gw.captured[3].Content)
}

func TestHistoryProjection(t *testing.T) {
	st := newMockStore()
	ctx := context.Background()
	_, err := st.AppendMessage(ctx, "u1", models.RoleUser, "Hello")
	require.NoError(t, err)
	_, err = st.AppendMessage(ctx, "u1", models.RoleAssistant, "Hi there")
	require.NoError(t, err)

	svc := NewChatService(st, &stubGateway{}, nil)

	entries, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []models.HistoryEntry{
		{Role: models.RoleUser, Content: "Hello"},
		{Role: models.RoleAssistant, Content: "Hi there"},
	}, entries)
}

func TestHistoryUnknownUserIsEmptyNotError(t *testing.T) {
	svc := NewChatService(newMockStore(), &stubGateway{}, nil)

	entries, err := svc.History(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestHistoryValidation(t *testing.T) {
	st := newMockStore()
	svc := NewChatService(st, &stubGateway{}, nil)

	_, err := svc.History(context.Background(), "")
	requireCode(t, err, ErrorValidation)
	require.Zero(t, st.historyCalls)
}

func TestHistoryStorageError(t *testing.T) {
	st := newMockStore()
	st.historyErr = errors.New("connection refused")
	svc := NewChatService(st, &stubGateway{}, nil)

	_, err := svc.History(context.Background(), "u1")
	requireCode(t, err, ErrorStorage)
}
