package membership

import (
	"context"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"gorm.io/gorm"
)

type (
	// Store manages one (holder, target) pair relation. Favorites, cart
	// items and subscriptions are all instances of it. Duplicate detection
	// is left to the relation's composite unique index, so two concurrent
	// adds of the same pair resolve to exactly one success and one
	// conflict.
	Store[T any] interface {
		Add(ctx context.Context, holder, target uint) (*T, error)
		Remove(ctx context.Context, holder, target uint) error
		Exists(ctx context.Context, holder, target uint) (bool, error)
	}

	Config struct {
		// Field names the relation on conflict and validation errors.
		Field string
		// Resource names the missing pair on not-found errors.
		Resource string
		// HolderColumn and TargetColumn are the pair columns of the row
		// table; Remove deletes by the full pair, never by target alone.
		HolderColumn string
		TargetColumn string
		// AllowSelf permits holder == target. Subscriptions forbid it.
		AllowSelf bool
	}

	store[T any] struct {
		db     *gorm.DB
		cfg    Config
		newRow func(holder, target uint) *T
	}
)

func NewStore[T any](db *gorm.DB, cfg Config, newRow func(holder, target uint) *T) Store[T] {
	return &store[T]{db: db, cfg: cfg, newRow: newRow}
}

func (s *store[T]) Add(ctx context.Context, holder, target uint) (*T, error) {
	if !s.cfg.AllowSelf && holder == target {
		return nil, domain.NewValidationError(s.cfg.Field, "cannot reference itself")
	}

	row := s.newRow(holder, target)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, domain.NewConflictError(s.cfg.Field, "already exists")
		}
		return nil, err
	}
	return row, nil
}

func (s *store[T]) Remove(ctx context.Context, holder, target uint) error {
	res := s.db.WithContext(ctx).
		Where(s.cfg.HolderColumn+" = ? AND "+s.cfg.TargetColumn+" = ?", holder, target).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(s.cfg.Resource)
	}
	return nil
}

func (s *store[T]) Exists(ctx context.Context, holder, target uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(s.cfg.HolderColumn+" = ? AND "+s.cfg.TargetColumn+" = ?", holder, target).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
