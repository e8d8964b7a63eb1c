package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nebari-dev/registrar/internal/audit"
	"github.com/nebari-dev/registrar/internal/events"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/store"
	"gorm.io/gorm"
)

// ResourceService contains the business logic for one resource kind.
type ResourceService struct {
	db     *gorm.DB
	store  *store.Store
	broker events.Broker
	logger *slog.Logger

	// OnCreate, when set, is called after every successful create.
	OnCreate func(kind models.Kind)
}

// New creates a ResourceService for kind. broker may be nil.
func New(db *gorm.DB, kind models.Kind, broker events.Broker, logger *slog.Logger) *ResourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceService{
		db:     db,
		store:  store.New(db, kind),
		broker: broker,
		logger: logger.With("kind", kind.Plural),
	}
}

// Kind returns the resource kind served.
func (s *ResourceService) Kind() models.Kind { return s.store.Kind() }

// Create validates req and inserts the record if its name is free.
// Blank fields yield a ValidationError and a taken name a ConflictError.
func (s *ResourceService) Create(ctx context.Context, req CreateRequest) (*models.Record, error) {
	kind := s.Kind()
	name, description, ok := normalize(req.Name, req.Description)
	if !ok {
		return nil, &ValidationError{Message: InvalidPayloadMessage}
	}

	rec, err := s.store.Insert(ctx, name, description)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, &ConflictError{Message: AlreadyExistsMessage(kind)}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Record created", "id", rec.ID, "name", rec.Name)
	s.afterCreate(ctx, audit.CreateAction(kind), req.RemoteAddr, rec)
	return rec, nil
}

// Seed inserts a record from a seed document. It reports false when the
// name already exists.
func (s *ResourceService) Seed(ctx context.Context, name, description string) (bool, error) {
	kind := s.Kind()
	name, description, ok := normalize(name, description)
	if !ok {
		return false, &ValidationError{Message: fmt.Sprintf(
			"%s seed entries need a name of at most %d characters and a description of at most %d",
			kind.Singular, models.MaxNameLength, models.MaxDescriptionLength)}
	}

	rec, err := s.store.Insert(ctx, name, description)
	if errors.Is(err, store.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.afterCreate(ctx, audit.SeedAction(kind), "", rec)
	return true, nil
}

// normalize trims both fields and reports whether they are present and fit
// their columns. SQLite ignores varchar lengths, so the bound is checked here.
func normalize(name, description string) (string, string, bool) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return name, description, false
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength ||
		utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return name, description, false
	}
	return name, description, true
}

// afterCreate writes the audit entry and publishes the created event. Neither
// failure undoes the insert.
func (s *ResourceService) afterCreate(ctx context.Context, action, remoteAddr string, rec *models.Record) {
	kind := s.Kind()

	details := map[string]string{"name": rec.Name, "description": rec.Description}
	if err := audit.LogAction(ctx, s.db, action, audit.Resource(kind, rec.ID), remoteAddr, details); err != nil {
		s.logger.Warn("Failed to write audit log", "id", rec.ID, "error", err)
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, events.Created(kind, *rec)); err != nil {
			s.logger.Warn("Failed to publish event", "id", rec.ID, "error", err)
		}
	}

	if s.OnCreate != nil {
		s.OnCreate(kind)
	}
}

// Get returns the record whose id is rawID. Malformed ids, ids outside the
// int64 range the databases store, and missing rows all yield ErrNotFound.
func (s *ResourceService) Get(ctx context.Context, rawID string) (*models.Record, error) {
	id, err := strconv.ParseUint(rawID, 10, 63)
	if err != nil {
		return nil, ErrNotFound
	}

	rec, err := s.store.FindByID(ctx, uint(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all records in creation order.
func (s *ResourceService) List(ctx context.Context) ([]models.Record, error) {
	return s.store.List(ctx)
}

// AlreadyExistsMessage is the message reported for a duplicate name.
func AlreadyExistsMessage(kind models.Kind) string {
	return fmt.Sprintf("Sorry. That %s already exists.", kind.Singular)
}

// NotFoundMessage is the message reported for an unknown id.
func NotFoundMessage(kind models.Kind) string {
	return fmt.Sprintf("%s does not exist", kind.Title())
}

// AddedMessage is the message reported after a successful create.
func AddedMessage(name string) string {
	return fmt.Sprintf("%s was added!", name)
}
