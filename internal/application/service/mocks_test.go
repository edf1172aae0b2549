package service

import (
	"context"
	"sync"
	"time"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/dispatcher"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
)

type mockLogger struct {
	mu       sync.Mutex
	warnMsgs []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.warnMsgs))
	copy(out, m.warnMsgs)
	return out
}

type mockDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (m *mockDispatcher) Subscribe(eventType event.Type, handler dispatcher.Handler) {}

func (m *mockDispatcher) SubscribeNamed(eventType event.Type, name string, handler dispatcher.Handler) {
}

func (m *mockDispatcher) Unsubscribe(eventType event.Type, name string) {}

func (m *mockDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	m.record(evt)
	return nil
}

func (m *mockDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	m.record(evt)
}

func (m *mockDispatcher) Close() error { return nil }

func (m *mockDispatcher) record(evt *event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

func (m *mockDispatcher) dispatched() []*event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*event.Event, len(m.events))
	copy(out, m.events)
	return out
}

type mockEngagementRepo struct {
	getByIDFunc         func(ctx context.Context, id int64) (*entity.Engagement, error)
	updateStateFunc     func(ctx context.Context, id int64, fromState, toState string) error
	updateChecklistFunc func(ctx context.Context, id int64, c *entity.Checklist) error
	setIssuedAtFunc     func(ctx context.Context, id int64, t time.Time) error
}

func (m *mockEngagementRepo) Create(ctx context.Context, eng *entity.Engagement) error {
	eng.ID = 1
	return nil
}

func (m *mockEngagementRepo) GetByID(ctx context.Context, id int64) (*entity.Engagement, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Engagement{ID: id, CurrentState: "draft", PartnerUserID: "partner-1"}, nil
}

func (m *mockEngagementRepo) List(ctx context.Context, limit, offset int) ([]*entity.Engagement, error) {
	return []*entity.Engagement{}, nil
}

func (m *mockEngagementRepo) UpdateState(ctx context.Context, id int64, fromState, toState string) error {
	if m.updateStateFunc != nil {
		return m.updateStateFunc(ctx, id, fromState, toState)
	}
	return nil
}

func (m *mockEngagementRepo) UpdateChecklist(ctx context.Context, id int64, c *entity.Checklist) error {
	if m.updateChecklistFunc != nil {
		return m.updateChecklistFunc(ctx, id, c)
	}
	return nil
}

func (m *mockEngagementRepo) SetIssuedAt(ctx context.Context, id int64, t time.Time) error {
	if m.setIssuedAtFunc != nil {
		return m.setIssuedAtFunc(ctx, id, t)
	}
	return nil
}

type mockWorkpaperRepo struct {
	getByIDFunc            func(ctx context.Context, id int64) (*entity.Workpaper, error)
	updateReviewStatusFunc func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error
	countFunc              func(ctx context.Context, engagementID int64) (int, int, error)
}

func (m *mockWorkpaperRepo) Create(ctx context.Context, wp *entity.Workpaper) error {
	wp.ID = 1
	return nil
}

func (m *mockWorkpaperRepo) GetByID(ctx context.Context, id int64) (*entity.Workpaper, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Workpaper{
		ID:           id,
		EngagementID: 1,
		Title:        "Cash testing",
		Content:      "Tested bank reconciliations",
		ReviewStatus: entity.ReviewStatusDraft,
	}, nil
}

func (m *mockWorkpaperRepo) GetByEngagementID(ctx context.Context, engagementID int64) ([]*entity.Workpaper, error) {
	return []*entity.Workpaper{}, nil
}

func (m *mockWorkpaperRepo) UpdateContent(ctx context.Context, id int64, title, content string) error {
	return nil
}

func (m *mockWorkpaperRepo) UpdateReviewStatus(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
	if m.updateReviewStatusFunc != nil {
		return m.updateReviewStatusFunc(ctx, id, status, lockedAt, lockedBy)
	}
	return nil
}

func (m *mockWorkpaperRepo) CountByEngagement(ctx context.Context, engagementID int64) (int, int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, engagementID)
	}
	return 0, 0, nil
}

type mockSignoffRepo struct {
	createFunc           func(ctx context.Context, s *entity.WorkpaperSignoff) error
	getByIDFunc          func(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error)
	getByWorkpaperIDFunc func(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error)
	deleteFunc           func(ctx context.Context, id int64) error
}

func (m *mockSignoffRepo) Create(ctx context.Context, s *entity.WorkpaperSignoff) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	s.ID = 1
	return nil
}

func (m *mockSignoffRepo) GetByID(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkpaperSignoff{ID: id, WorkpaperID: 1, UserID: "u1", SignoffType: "preparer"}, nil
}

func (m *mockSignoffRepo) GetByWorkpaperID(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error) {
	if m.getByWorkpaperIDFunc != nil {
		return m.getByWorkpaperIDFunc(ctx, workpaperID)
	}
	return []*entity.WorkpaperSignoff{}, nil
}

func (m *mockSignoffRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockLogRepo struct {
	mu         sync.Mutex
	appendFunc func(ctx context.Context, entry *entity.TransitionLogEntry) error
	entries    []*entity.TransitionLogEntry
}

func (m *mockLogRepo) Append(ctx context.Context, entry *entity.TransitionLogEntry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLogRepo) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.TransitionLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.TransitionLogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// mockTxManager runs the function directly; individual repo mocks decide
// success or failure.
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
