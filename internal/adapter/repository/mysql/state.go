package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// engineState is a tiny key/value table for flags that must survive
// restarts: the circuit breaker and the scanner's last-run marker.
type engineState struct {
	Key       string    `gorm:"primaryKey;size:64;column:k"`
	Value     string    `gorm:"size:64;column:v"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (engineState) TableName() string { return "engine_state" }

type StateRepository struct{ db *gorm.DB }

func NewStateRepository(db *gorm.DB) *StateRepository { return &StateRepository{db: db} }

func (r *StateRepository) get(ctx context.Context, key string) (string, bool, error) {
	var row engineState
	res := r.db.WithContext(ctx).Where("k = ?", key).First(&row)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if res.Error != nil {
		return "", false, res.Error
	}
	return row.Value, true, nil
}

func (r *StateRepository) set(ctx context.Context, key, value string) error {
	row := engineState{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// GetBool reports false for keys that were never written.
func (r *StateRepository) GetBool(ctx context.Context, key string) (bool, error) {
	v, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

func (r *StateRepository) SetBool(ctx context.Context, key string, v bool) error {
	s := "false"
	if v {
		s = "true"
	}
	return r.set(ctx, key, s)
}

// GetTime returns the zero time for keys that were never written.
func (r *StateRepository) GetTime(ctx context.Context, key string) (time.Time, error) {
	v, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, v)
}

func (r *StateRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	return r.set(ctx, key, t.UTC().Format(time.RFC3339Nano))
}
