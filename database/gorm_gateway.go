package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

var columns = map[string]string{
	models.AttrNoteID:    "note_id",
	models.AttrUserID:    "user_id",
	models.AttrNotebook:  "notebook",
	models.AttrText:      "text",
	models.AttrCreatedAt: "created_at",
	models.AttrUpdatedAt: "updated_at",
}

// GormGateway stores notes in a relational table through gorm. Secondary
// indexes map to composite (hash key, note_id) indexes on the same table.
type GormGateway struct {
	db      *Database
	table   string
	indexes indexRegistry
	logger  *zap.Logger
}

func NewGormGateway(db *Database, cfg config.Config) *GormGateway {
	log := db.logger
	if log == nil {
		log = zap.NewNop()
	}
	return &GormGateway{
		db:      db,
		table:   cfg.Table,
		indexes: newIndexRegistry(Indexes(cfg)),
		logger:  log,
	}
}

func (g *GormGateway) scoped(ctx context.Context) *gorm.DB {
	return g.db.DB.WithContext(ctx).Table(g.table)
}

func (g *GormGateway) PutItem(ctx context.Context, note models.Note) error {
	err := g.scoped(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&note).Error
	if err != nil {
		return fmt.Errorf("failed to put note %s: %w", note.NoteID, err)
	}
	return nil
}

func (g *GormGateway) GetItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	var note models.Note
	err := g.scoped(ctx).Where("note_id = ?", noteID).Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Note{}, false, nil
	}
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to get note %s: %w", noteID, err)
	}
	return note, true, nil
}

func (g *GormGateway) UpdateItem(ctx context.Context, noteID string, assignments map[string]any, condition Condition) (ConditionalWriteResult, error) {
	if err := condition.validate(); err != nil {
		return PreconditionFailed, err
	}
	if err := checkAssignments(assignments); err != nil {
		return PreconditionFailed, err
	}

	updates := make(map[string]any, len(assignments))
	for name, value := range assignments {
		updates[columns[name]] = value
	}

	result := PreconditionFailed
	err := g.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Table(g.table).Where("note_id = ?", noteID)
		if condition.UpdatedAt != nil {
			query = query.Where("updated_at = ?", *condition.UpdatedAt)
		}
		res := query.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var note models.Note
		if err := tx.Table(g.table).Where("note_id = ?", noteID).Take(&note).Error; err != nil {
			return err
		}
		result = Updated(note)
		return nil
	})
	if err != nil {
		return PreconditionFailed, fmt.Errorf("failed to update note %s: %w", noteID, err)
	}
	return result, nil
}

func (g *GormGateway) DeleteItem(ctx context.Context, noteID string) (models.Note, bool, error) {
	var prior models.Note
	found := false
	err := g.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(g.table).Where("note_id = ?", noteID).Take(&prior).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return tx.Table(g.table).Where("note_id = ?", noteID).Delete(&models.Note{}).Error
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}
	if !found {
		return models.Note{}, false, nil
	}
	return prior, true, nil
}

func (g *GormGateway) QueryIndex(ctx context.Context, index string, key KeyCondition, projection []string) ([]models.Note, error) {
	spec, err := g.indexes.lookup(index, key)
	if err != nil {
		return nil, err
	}

	query := g.scoped(ctx).Where(columns[spec.HashKey]+" = ?", key.Value).Order("note_id ASC")
	if len(projection) > 0 {
		selected := make([]string, 0, len(projection))
		for _, name := range projection {
			column, ok := columns[name]
			if !ok {
				return nil, fmt.Errorf("%w: cannot project %q", ErrInvalidAssignment, name)
			}
			selected = append(selected, column)
		}
		query = query.Select(selected)
	}

	var notes []models.Note
	if err := query.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to query index %s: %w", index, err)
	}

	result := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		result = append(result, note.Project(projection))
	}
	return result, nil
}

func (g *GormGateway) Migrate(ctx context.Context) error {
	return RunMigrations(g.db.DB.WithContext(ctx), g.table, g.logger)
}

func (g *GormGateway) Close() error {
	return g.db.Close()
}
