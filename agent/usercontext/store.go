package usercontext

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var ErrContextNotFound = errors.New("user context not found")

// Store is the persistent tier of the context cache. It holds the
// serialized snapshot; the cache is the only reader and writer of this
// form.
type Store interface {
	Load(ctx context.Context, userID string) (*UserContext, error)
	Save(ctx context.Context, uc *UserContext) error
	Delete(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) error
}

// contextRow is the storage shape: one JSON payload per user. The
// snapshot evolves with the app, so it is persisted as a document
// rather than spread over columns.
type contextRow struct {
	bun.BaseModel `bun:"table:user_contexts,alias:uc"`

	UserID    string    `bun:"user_id,pk"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore persists snapshots in the same SQLite database as the
// records, in a table of its own.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*contextRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create user_contexts table: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context, userID string) (*UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}

	row := new(contextRow)
	err := s.db.NewSelect().Model(row).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load context row: %w", err)
	}

	var uc UserContext
	if err := json.Unmarshal(row.Payload, &uc); err != nil {
		return nil, fmt.Errorf("unmarshal user context: %w", err)
	}

	uc.EnsureTrackingMap()
	if err := uc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid context loaded from store: %w", err)
	}
	return &uc, nil
}

func (s *BunStore) Save(ctx context.Context, uc *UserContext) error {
	if uc == nil {
		return ErrNilContext
	}
	if err := uc.Validate(); err != nil {
		return err
	}
	uc.EnsureTrackingMap()

	payload, err := json.Marshal(uc)
	if err != nil {
		return fmt.Errorf("marshal user context: %w", err)
	}

	row := &contextRow{
		UserID:    uc.UserID,
		Payload:   payload,
		UpdatedAt: uc.LastUpdated,
	}
	_, err = s.db.NewInsert().Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save context row: %w", err)
	}
	return nil
}

func (s *BunStore) Delete(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	_, err := s.db.NewDelete().Model((*contextRow)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return err
}

func (s *BunStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.NewDelete().Model((*contextRow)(nil)).Where("1 = 1").Exec(ctx)
	return err
}
