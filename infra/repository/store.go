// Package repository implements the local ledger store on GORM. One generic
// store serves every entity family; the domain structs carry their own column
// mapping.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the GORM-backed implementation of repository.Store.
type Store[T domain.Syncable[T]] struct {
	db *gorm.DB
}

// NewStore creates a store for one entity type on the given session.
func NewStore[T domain.Syncable[T]](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Get implements repository.Store.
func (s *Store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Save implements repository.Store: an upsert keyed on id.
func (s *Store[T]) Save(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(entity).Error
}

// Put implements repository.Store. It shares Save's upsert; the distinction
// is contractual: Put writes the authoritative remote version verbatim.
func (s *Store[T]) Put(ctx context.Context, entity *T) error {
	return s.Save(ctx, entity)
}

// Delete implements repository.Store.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error
}

// ListByOwner implements repository.Store.
func (s *Store[T]) ListByOwner(ctx context.Context, owner uuid.UUID) ([]T, error) {
	var entities []T
	err := s.db.WithContext(ctx).Where("user_id = ?", owner).Find(&entities).Error
	return entities, err
}

// ListPending implements repository.Store.
func (s *Store[T]) ListPending(ctx context.Context, owner uuid.UUID) ([]T, error) {
	var entities []T
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND pending_sync = ?", owner, true).
		Find(&entities).Error
	return entities, err
}

// MarkSynced implements repository.Store.
func (s *Store[T]) MarkSynced(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(new(T)).
		Where("id IN ?", ids).
		Update("pending_sync", false).Error
}

// CountPending implements repository.Store.
func (s *Store[T]) CountPending(ctx context.Context, owner uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND pending_sync = ?", owner, true).
		Count(&count).Error
	return count, err
}
