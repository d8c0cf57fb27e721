package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stoic-notes/notes/broker"
	"stoic-notes/notes/config"
	"stoic-notes/notes/database"
	"stoic-notes/notes/models"
)

// NoteUpdate carries the attributes a client may change on an existing note.
type NoteUpdate struct {
	Notebook string
	Text     string
}

type NoteServiceInterface interface {
	CreateNote(ctx context.Context, userID, notebook, text string) (models.Note, error)
	GetNoteById(ctx context.Context, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, update NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) (*models.Note, error)
	SearchNotesByUser(ctx context.Context, userID string) ([]models.NoteSummary, error)
	SearchNotesByNotebook(ctx context.Context, notebook string) ([]models.NoteSummary, error)
}

type NoteService struct {
	gateway       database.Gateway
	publisher     broker.Publisher
	logger        *zap.Logger
	userIndex     string
	notebookIndex string
	now           func() time.Time
	newID         func() (uuid.UUID, error)
}

type Option func(*NoteService)

// WithClock replaces the wall clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *NoteService) { s.now = now }
}

func WithPublisher(publisher broker.Publisher) Option {
	return func(s *NoteService) { s.publisher = publisher }
}

func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(s *NoteService) { s.newID = newID }
}

func NewNoteService(gateway database.Gateway, cfg config.Config, logger *zap.Logger, opts ...Option) *NoteService {
	s := &NoteService{
		gateway:       gateway,
		publisher:     broker.NoopPublisher{},
		logger:        logger,
		userIndex:     cfg.UserIndexName(),
		notebookIndex: cfg.NotebookIndexName(),
		now:           time.Now,
		newID:         uuid.NewV7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

func (s *NoteService) publish(ctx context.Context, eventType broker.EventType, actorID string, data interface{}) {
	if err := s.publisher.Publish(ctx, eventType, actorID, data); err != nil {
		s.logger.Warn("Failed to publish note event", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// CreateNote stores a new note under a time-ordered id.
func (s *NoteService) CreateNote(ctx context.Context, userID, notebook, text string) (models.Note, error) {
	id, err := s.newID()
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrIDGeneration, err)
	}
	now := models.EpochMillis(s.now())

	note := models.Note{
		NoteID:    id.String(),
		UserID:    userID,
		Notebook:  notebook,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.gateway.PutItem(ctx, note); err != nil {
		return models.Note{}, storageError(err)
	}

	s.publish(ctx, broker.NoteCreated, note.UserID, note)
	return note, nil
}

func (s *NoteService) GetNoteById(ctx context.Context, id string) (*models.Note, error) {
	note, found, err := s.gateway.GetItem(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if !found {
		return nil, nil
	}
	return &note, nil
}

const maxUpdateAttempts = 5

// nextUpdatedAt never repeats or goes below the stored stamp, whatever the
// clock says.
func nextUpdatedAt(now time.Time, stored int64) int64 {
	return max(models.EpochMillis(now), stored+1)
}

// UpdateNote rewrites notebook and text of an existing note. It returns nil
// without error when no note has the given id. The write is pinned to the
// updatedAt it was computed from and retried when another writer got there
// first.
func (s *NoteService) UpdateNote(ctx context.Context, id string, update NoteUpdate) (*models.Note, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		stored, found, err := s.gateway.GetItem(ctx, id)
		if err != nil {
			return nil, storageError(err)
		}
		if !found {
			return nil, nil
		}

		assignments := map[string]any{
			models.AttrNotebook:  update.Notebook,
			models.AttrText:      update.Text,
			models.AttrUpdatedAt: nextUpdatedAt(s.now(), stored.UpdatedAt),
		}
		result, err := s.gateway.UpdateItem(ctx, id, assignments, database.UnchangedSince(stored.UpdatedAt))
		if err != nil {
			return nil, storageError(err)
		}
		if note, ok := result.Item(); ok {
			s.publish(ctx, broker.NoteUpdated, note.UserID, note)
			return &note, nil
		}
		s.logger.Debug("Note changed during update, retrying", zap.String("note_id", id), zap.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

// DeleteNote removes the note and returns it as it was before deletion.
func (s *NoteService) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	prior, found, err := s.gateway.DeleteItem(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if !found {
		return nil, nil
	}

	s.publish(ctx, broker.NoteDeleted, prior.UserID, map[string]string{models.AttrNoteID: prior.NoteID})
	return &prior, nil
}

func (s *NoteService) SearchNotesByUser(ctx context.Context, userID string) ([]models.NoteSummary, error) {
	return s.search(ctx, s.userIndex, models.AttrUserID, userID)
}

func (s *NoteService) SearchNotesByNotebook(ctx context.Context, notebook string) ([]models.NoteSummary, error) {
	return s.search(ctx, s.notebookIndex, models.AttrNotebook, notebook)
}

func (s *NoteService) search(ctx context.Context, index, attribute, value string) ([]models.NoteSummary, error) {
	notes, err := s.gateway.QueryIndex(ctx, index, database.KeyCondition{Attribute: attribute, Value: value}, models.SummaryAttributes)
	if err != nil {
		return nil, storageError(err)
	}
	summaries := make([]models.NoteSummary, 0, len(notes))
	for _, note := range notes {
		summaries = append(summaries, note.Summary())
	}
	return summaries, nil
}
