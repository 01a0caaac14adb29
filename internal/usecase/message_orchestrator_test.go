package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/logger"
)

type processedMark struct {
	MessageID   string
	Status      string
	HandlerType string
	ErrorDetail string
}

// fakeMessageRepo is an in-memory operator message queue for tests.
type fakeMessageRepo struct {
	mu        sync.Mutex
	pending   []*entity.OperatorMessage
	processed []processedMark
	statuses  []string
}

func (r *fakeMessageRepo) Save(ctx context.Context, msg *entity.OperatorMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, msg)
	return nil
}

func (r *fakeMessageRepo) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.OperatorMessage, error) {
	return map[string]*entity.OperatorMessage{}, nil
}

func (r *fakeMessageRepo) FindUnprocessed(ctx context.Context, limit int) ([]*entity.OperatorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, nil
}

func (r *fakeMessageRepo) GetLastMessage(ctx context.Context) (*entity.OperatorMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) UpdateStatusByMessageID(ctx context.Context, messageID, status string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, messageID+"="+status)
	return nil
}

func (r *fakeMessageRepo) MarkAsProcessedByMessageID(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, processedMark{
		MessageID:   messageID,
		Status:      status,
		HandlerType: handlerType,
		ErrorDetail: errorDetail,
	})
	return nil
}

// stubHandler handles subjects containing its keyword.
type stubHandler struct {
	keyword    string
	processErr error
	handled    []*entity.OperatorMessage
}

func (h *stubHandler) CanHandle(subject string) bool {
	return strings.Contains(strings.ToLower(subject), h.keyword)
}

func (h *stubHandler) Process(ctx context.Context, msg *entity.OperatorMessage) error {
	h.handled = append(h.handled, msg)
	return h.processErr
}

// stubRouter returns the first registered handler that can handle a subject.
type stubRouter struct {
	handlers []MessageHandler
}

func (r *stubRouter) Register(handler MessageHandler) {
	r.handlers = append(r.handlers, handler)
}

func (r *stubRouter) GetHandler(subject string) MessageHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}

func TestProcessMessageNoHandlerIsSkipped(t *testing.T) {
	repo := &fakeMessageRepo{}
	orchestrator := NewMessageOrchestrator(repo, &stubRouter{}, logger.NewNopLogger())

	msg := &entity.OperatorMessage{MessageID: "msg-1", Subject: "Newsletter"}
	err := orchestrator.ProcessMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, repo.processed, 1)
	assert.Equal(t, entity.MessageStatusSkipped, repo.processed[0].Status)
}

func TestProcessMessageHandlerFailureIsRecorded(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := &stubRouter{}
	router.Register(&stubHandler{keyword: "delay", processErr: errors.New("unparseable notice")})
	orchestrator := NewMessageOrchestrator(repo, router, logger.NewNopLogger())

	msg := &entity.OperatorMessage{MessageID: "msg-1", Subject: "DELAY NOTICE voy-1"}
	err := orchestrator.ProcessMessage(context.Background(), msg)

	// A handler failure never aborts the processing loop.
	require.NoError(t, err)
	require.Len(t, repo.processed, 1)
	assert.Equal(t, entity.MessageStatusFailed, repo.processed[0].Status)
	assert.Equal(t, "unparseable notice", repo.processed[0].ErrorDetail)
}

func TestProcessMessageSuccess(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := &stubRouter{}
	handler := &stubHandler{keyword: "delay"}
	router.Register(handler)
	orchestrator := NewMessageOrchestrator(repo, router, logger.NewNopLogger())

	msg := &entity.OperatorMessage{MessageID: "msg-1", Subject: "DELAY NOTICE voy-1"}
	err := orchestrator.ProcessMessage(context.Background(), msg)

	require.NoError(t, err)
	assert.Len(t, handler.handled, 1)
	require.Len(t, repo.processed, 1)
	assert.Equal(t, entity.MessageStatusProcessed, repo.processed[0].Status)
	assert.Equal(t, []string{"msg-1=processing"}, repo.statuses)
}

func TestProcessPendingMessages(t *testing.T) {
	repo := &fakeMessageRepo{
		pending: []*entity.OperatorMessage{
			{MessageID: "msg-1", Subject: "DELAY NOTICE voy-1"},
			{MessageID: "msg-2", Subject: "Newsletter"},
		},
	}
	router := &stubRouter{}
	handler := &stubHandler{keyword: "delay"}
	router.Register(handler)
	orchestrator := NewMessageOrchestrator(repo, router, logger.NewNopLogger())

	err := orchestrator.ProcessPendingMessages(context.Background())

	require.NoError(t, err)
	assert.Len(t, handler.handled, 1)
	assert.Len(t, repo.processed, 2)
}
