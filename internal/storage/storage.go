package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind тип сохраненного расчета
type Kind string

const (
	KindBudget      Kind = "budget"
	KindEMI         Kind = "emi"
	KindMortgage    Kind = "mortgage"
	KindRetirement  Kind = "retirement"
	KindROI         Kind = "roi"
	KindSalary      Kind = "salary"
	KindSavingsGoal Kind = "savings_goal"
)

// Kinds все поддерживаемые типы записей
var Kinds = []Kind{KindBudget, KindEMI, KindMortgage, KindRetirement, KindROI, KindSalary, KindSavingsGoal}

// Valid проверяет, что тип известен
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord запись не может быть сохранена
	ErrInvalidRecord = errors.New("invalid record")
)

// Record сохраненный расчет пользователя: входные параметры и сводка
// без полного графика.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int64           `json:"user_id"`
	Kind      Kind            `json:"kind"`
	Tool      string          `json:"tool"`
	Input     json.RawMessage `json:"input"`
	Summary   json.RawMessage `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store хранилище расчетов
type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	ListByUser(ctx context.Context, userID int64, kind Kind) ([]Record, error)
}

// MemoryStore хранит записи в памяти процесса
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	byUser  map[int64][]uuid.UUID

	clock func() time.Time
	newID func() uuid.UUID
}

// Option настраивает MemoryStore
type Option func(*MemoryStore)

// WithClock задает источник времени для CreatedAt
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// WithIDGenerator задает генератор идентификаторов
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *MemoryStore) {
		s.newID = gen
	}
}

// NewMemoryStore создает пустое хранилище
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records: make(map[uuid.UUID]Record),
		byUser:  make(map[int64][]uuid.UUID),
		clock:   time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create сохраняет запись, присваивая ей ID и время создания
func (s *MemoryStore) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if rec.UserID <= 0 {
		return Record{}, fmt.Errorf("%w: user_id must be positive", ErrInvalidRecord)
	}
	if !rec.Kind.Valid() {
		return Record{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, rec.Kind)
	}

	rec.ID = s.newID()
	rec.CreatedAt = s.clock().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec.ID)
	return rec, nil
}

// Get возвращает запись по ID
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// ListByUser возвращает записи пользователя, новые первыми.
// Пустой kind означает все типы.
func (s *MemoryStore) ListByUser(ctx context.Context, userID int64, kind Kind) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := s.byUser[userID]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec := s.records[id]
		if kind == "" || rec.Kind == kind {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
