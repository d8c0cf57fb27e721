package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

var (
	ErrUnknownIndex          = errors.New("unknown index")
	ErrInvalidKeyCondition   = errors.New("key condition does not match index hash key")
	ErrUnsupportedCondition  = errors.New("unsupported write condition")
	ErrInvalidAssignment     = errors.New("invalid attribute assignment")
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
)

// Gateway is the storage abstraction every engine implements. Notes are keyed
// by noteId and reachable through the secondary indexes returned by Indexes.
type Gateway interface {
	PutItem(ctx context.Context, note models.Note) error
	GetItem(ctx context.Context, noteID string) (models.Note, bool, error)
	UpdateItem(ctx context.Context, noteID string, assignments map[string]any, condition Condition) (ConditionalWriteResult, error)
	DeleteItem(ctx context.Context, noteID string) (models.Note, bool, error)
	QueryIndex(ctx context.Context, index string, key KeyCondition, projection []string) ([]models.Note, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Condition guards a conditional write. It always requires attribute_exists
// on the primary key and may also pin the stored updatedAt.
type Condition struct {
	AttributeExists string
	UpdatedAt       *int64
}

// KeyExists makes a write succeed only when the item is already stored.
var KeyExists = Condition{AttributeExists: models.AttrNoteID}

// UnchangedSince makes a write succeed only when the item is stored and its
// updatedAt still equals updatedAt.
func UnchangedSince(updatedAt int64) Condition {
	return Condition{AttributeExists: models.AttrNoteID, UpdatedAt: &updatedAt}
}

func (c Condition) holds(stored models.Note) bool {
	return c.UpdatedAt == nil || stored.UpdatedAt == *c.UpdatedAt
}

func (c Condition) validate() error {
	if c.AttributeExists != models.AttrNoteID {
		return fmt.Errorf("%w: attribute_exists(%s)", ErrUnsupportedCondition, c.AttributeExists)
	}
	return nil
}

// KeyCondition selects the items of an index whose hash key equals Value.
type KeyCondition struct {
	Attribute string
	Value     string
}

// ConditionalWriteResult reports the outcome of a conditional update. A failed
// precondition is a normal outcome, not an error.
type ConditionalWriteResult struct {
	item *models.Note
}

func Updated(note models.Note) ConditionalWriteResult {
	return ConditionalWriteResult{item: &note}
}

var PreconditionFailed = ConditionalWriteResult{}

// Item returns the stored item after the update, or false if the precondition
// did not hold.
func (r ConditionalWriteResult) Item() (models.Note, bool) {
	if r.item == nil {
		return models.Note{}, false
	}
	return *r.item, true
}

// IndexSpec describes a secondary index. Every index uses noteId as range key.
type IndexSpec struct {
	Name       string
	HashKey    string
	Projection []string
}

// Indexes returns the secondary indexes for the configured table.
func Indexes(cfg config.Config) []IndexSpec {
	return []IndexSpec{
		{
			Name:       cfg.UserIndexName(),
			HashKey:    models.AttrUserID,
			Projection: []string{models.AttrText, models.AttrNotebook},
		},
		{
			Name:       cfg.NotebookIndexName(),
			HashKey:    models.AttrNotebook,
			Projection: []string{models.AttrText, models.AttrUserID},
		},
	}
}

type indexRegistry map[string]IndexSpec

func newIndexRegistry(specs []IndexSpec) indexRegistry {
	r := make(indexRegistry, len(specs))
	for _, spec := range specs {
		r[spec.Name] = spec
	}
	return r
}

func (r indexRegistry) lookup(name string, key KeyCondition) (IndexSpec, error) {
	spec, ok := r[name]
	if !ok {
		return IndexSpec{}, fmt.Errorf("%w: %s", ErrUnknownIndex, name)
	}
	if key.Attribute != spec.HashKey {
		return IndexSpec{}, fmt.Errorf("%w: %s is keyed by %s, not %s", ErrInvalidKeyCondition, name, spec.HashKey, key.Attribute)
	}
	return spec, nil
}

// checkAssignments rejects unknown attributes, wrongly typed values and
// attempts to rewrite the primary key.
func checkAssignments(assignments map[string]any) error {
	if _, ok := assignments[models.AttrNoteID]; ok {
		return fmt.Errorf("%w: %s is the primary key", ErrInvalidAssignment, models.AttrNoteID)
	}
	var scratch models.Note
	if err := scratch.Apply(assignments); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssignment, err)
	}
	return nil
}

// Open connects to the backend named by cfg.StorageBackend.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Gateway, error) {
	logger = logger.With(zap.String("backend", cfg.StorageBackend), zap.String("table", cfg.Table))

	switch cfg.StorageBackend {
	case config.BackendDynamoDB:
		client, err := NewDynamoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewDynamoGateway(client, cfg), nil
	case config.BackendPostgres, config.BackendSQLite:
		db, err := Setup(cfg, logger)
		if err != nil {
			return nil, err
		}
		gw := NewGormGateway(db, cfg)
		if cfg.MigrateOnOpen() {
			if err := gw.Migrate(ctx); err != nil {
				gw.Close()
				return nil, err
			}
		}
		return gw, nil
	case config.BackendBadger:
		gw, err := OpenBadgerGateway(cfg, logger)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageBackend, cfg.StorageBackend)
	}
}
