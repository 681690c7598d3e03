package review

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/store"
)

// mockWordStore is a configurable in-memory WordStore for tests.
type mockWordStore struct {
	CreateFn            func(ctx context.Context, word *domain.Word) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	ListByIDsFn         func(ctx context.Context, ids []uuid.UUID) ([]*domain.Word, error)
	FindDueOrNewFn      func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Word, error)
	UpdateReviewStateFn func(ctx context.Context, id uuid.UUID, state domain.ReviewState, prevReviewedAt time.Time) error

	findDueCalls int
}

var _ store.WordStore = (*mockWordStore)(nil)

func (m *mockWordStore) Create(ctx context.Context, word *domain.Word) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, word)
	}
	return nil
}

func (m *mockWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrWordNotFound
}

func (m *mockWordStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Word, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ids)
	}
	return []*domain.Word{}, nil
}

func (m *mockWordStore) FindDueOrNew(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Word, error) {
	m.findDueCalls++
	if m.FindDueOrNewFn != nil {
		return m.FindDueOrNewFn(ctx, userID, now, limit)
	}
	return []*domain.Word{}, nil
}

func (m *mockWordStore) UpdateReviewState(
	ctx context.Context,
	id uuid.UUID,
	state domain.ReviewState,
	prevReviewedAt time.Time,
) error {
	if m.UpdateReviewStateFn != nil {
		return m.UpdateReviewStateFn(ctx, id, state, prevReviewedAt)
	}
	return nil
}

func (m *mockWordStore) WithTx(tx *sql.Tx) store.WordStore { return m }

// mockQueueStore is a configurable in-memory QueueStore for tests.
type mockQueueStore struct {
	CreateFn      func(ctx context.Context, queue *domain.DailyQueue) error
	FindByDateFn  func(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyQueue, error)
	AttachStoryFn func(ctx context.Context, id uuid.UUID, story string) error

	createCalls      int
	attachStoryCalls int
}

var _ store.QueueStore = (*mockQueueStore)(nil)

func (m *mockQueueStore) Create(ctx context.Context, queue *domain.DailyQueue) error {
	m.createCalls++
	if m.CreateFn != nil {
		return m.CreateFn(ctx, queue)
	}
	return nil
}

func (m *mockQueueStore) FindByDate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*domain.DailyQueue, error) {
	if m.FindByDateFn != nil {
		return m.FindByDateFn(ctx, userID, date)
	}
	return nil, store.ErrQueueNotFound
}

func (m *mockQueueStore) AttachStory(ctx context.Context, id uuid.UUID, story string) error {
	m.attachStoryCalls++
	if m.AttachStoryFn != nil {
		return m.AttachStoryFn(ctx, id, story)
	}
	return nil
}

func (m *mockQueueStore) WithTx(tx *sql.Tx) store.QueueStore { return m }

// mockStoryGenerator is a configurable StoryGenerator for tests.
type mockStoryGenerator struct {
	GenerateStoryFn func(ctx context.Context, terms []string) (string, error)
}

func (m *mockStoryGenerator) GenerateStory(ctx context.Context, terms []string) (string, error) {
	if m.GenerateStoryFn != nil {
		return m.GenerateStoryFn(ctx, terms)
	}
	return "a story", nil
}

// The transaction helper needs a real *sql.DB. The stores under test are
// mocks that ignore the transaction, so a no-op driver is enough.
type noopDriver struct{}

func (noopDriver) Open(name string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}
func (noopConn) Close() error              { return nil }
func (noopConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var registerNoopDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	registerNoopDriver.Do(func() {
		sql.Register("review-noop", noopDriver{})
	})

	db, err := sql.Open("review-noop", "")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
