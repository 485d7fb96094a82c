package history

import (
	"context"
	"errors"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&TurnRecord{})
}

func (s *Store) RecordTurn(ctx context.Context, turn assistant.Turn) error {
	if turn.ID == "" {
		turn.ID = shared.NewID("turn_")
	}
	return s.db.WithContext(ctx).Create(fromTurn(turn)).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*TurnRecord, error) {
	var r TurnRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Recent lists turns newest first.
func (s *Store) Recent(ctx context.Context, limit, offset int) ([]*TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []*TurnRecord
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&TurnRecord{}).Count(&n).Error
	return n, err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
