package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stoic-notes/notes/broker"
	"stoic-notes/notes/database"
	"stoic-notes/notes/models"
	"stoic-notes/notes/services"
)

// MockNoteService mocks the NoteServiceInterface for testing
type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) CreateNote(ctx context.Context, userID, notebook, text string) (models.Note, error) {
	args := m.Called(ctx, userID, notebook, text)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) GetNoteById(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	return noteOrNil(args.Get(0)), args.Error(1)
}

func (m *MockNoteService) UpdateNote(ctx context.Context, id string, update services.NoteUpdate) (*models.Note, error) {
	args := m.Called(ctx, id, update)
	return noteOrNil(args.Get(0)), args.Error(1)
}

func (m *MockNoteService) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	return noteOrNil(args.Get(0)), args.Error(1)
}

func (m *MockNoteService) SearchNotesByUser(ctx context.Context, userID string) ([]models.NoteSummary, error) {
	args := m.Called(ctx, userID)
	return summariesOrNil(args.Get(0)), args.Error(1)
}

func (m *MockNoteService) SearchNotesByNotebook(ctx context.Context, notebook string) ([]models.NoteSummary, error) {
	args := m.Called(ctx, notebook)
	return summariesOrNil(args.Get(0)), args.Error(1)
}

func noteOrNil(v interface{}) *models.Note {
	if v == nil {
		return nil
	}
	return v.(*models.Note)
}

func summariesOrNil(v interface{}) []models.NoteSummary {
	if v == nil {
		return nil
	}
	return v.([]models.NoteSummary)
}

// MockGateway mocks database.Gateway for testing
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) PutItem(ctx context.Context, note models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockGateway) GetItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	args := m.Called(ctx, noteID)
	return args.Get(0).(models.Note), args.Bool(1), args.Error(2)
}

func (m *MockGateway) UpdateItem(ctx context.Context, noteID string, assignments map[string]any, condition database.Condition) (database.ConditionalWriteResult, error) {
	args := m.Called(ctx, noteID, assignments, condition)
	return args.Get(0).(database.ConditionalWriteResult), args.Error(1)
}

func (m *MockGateway) DeleteItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	args := m.Called(ctx, noteID)
	return args.Get(0).(models.Note), args.Bool(1), args.Error(2)
}

func (m *MockGateway) QueryIndex(ctx context.Context, index string, key database.KeyCondition, projection []string) ([]models.Note, error) {
	args := m.Called(ctx, index, key, projection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockGateway) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Close() error {
	return m.Called().Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType broker.EventType, actorID string, data interface{}) error {
	args := m.Called(ctx, eventType, actorID, data)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}
