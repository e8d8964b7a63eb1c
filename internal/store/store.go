// Package store persists catalog records. A Store is bound to one resource
// kind and exposes only insert and read operations; records are immutable.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nebari-dev/registrar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a record with the same name already exists.
	ErrDuplicate = errors.New("record already exists")
)

// Store reads and writes the records of a single kind.
type Store struct {
	db   *gorm.DB
	kind models.Kind
}

// New returns a Store for kind backed by db.
func New(db *gorm.DB, kind models.Kind) *Store {
	return &Store{db: db, kind: kind}
}

// Kind returns the resource kind this store serves.
func (s *Store) Kind() models.Kind { return s.kind }

// table starts a request-scoped statement on the kind's table.
func (s *Store) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.kind.Table())
}

// Insert adds a record unless one with the same name exists. The existence
// check and the write are a single statement, so concurrent inserts of one
// name yield exactly one row and ErrDuplicate for every other caller.
func (s *Store) Insert(ctx context.Context, name, description string) (*models.Record, error) {
	rec := models.Record{Name: name, Description: description}

	result := s.table(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert %s: %w", s.kind.Singular, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrDuplicate
	}
	return &rec, nil
}

// FindByName returns the record with the given name.
func (s *Store) FindByName(ctx context.Context, name string) (*models.Record, error) {
	var rec models.Record
	err := s.table(ctx).Where("name = ?", name).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by name: %w", s.kind.Singular, err)
	}
	return &rec, nil
}

// FindByID returns the record with the given id.
func (s *Store) FindByID(ctx context.Context, id uint) (*models.Record, error) {
	var rec models.Record
	err := s.table(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by id: %w", s.kind.Singular, err)
	}
	return &rec, nil
}

// List returns every record in insertion (id) order. The result is never nil.
func (s *Store) List(ctx context.Context) ([]models.Record, error) {
	records := []models.Record{}
	if err := s.table(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Plural, err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.table(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.kind.Plural, err)
	}
	return n, nil
}
