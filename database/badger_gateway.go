package database

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

// BadgerGateway keeps notes in an embedded badger store.
//
// Layout:
//
//	note/<table>/<noteId>                        JSON encoded note
//	idx/<table>/<index>/<hex(hash key)>/<noteId> empty
//
// Badger iterates keys in byte order, so a prefix scan over an index yields
// notes in ascending noteId order.
type BadgerGateway struct {
	db      *badger.DB
	table   string
	specs   []IndexSpec
	indexes indexRegistry
	logger  *zap.Logger
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }

// OpenBadgerGateway opens the store at cfg.BadgerPath, or an in-memory store
// when the path is empty.
func OpenBadgerGateway(cfg config.Config, log *zap.Logger) (*BadgerGateway, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath)
	if cfg.BadgerPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{sugar: log.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return NewBadgerGateway(db, cfg, log), nil
}

func NewBadgerGateway(db *badger.DB, cfg config.Config, log *zap.Logger) *BadgerGateway {
	specs := Indexes(cfg)
	return &BadgerGateway{
		db:      db,
		table:   cfg.Table,
		specs:   specs,
		indexes: newIndexRegistry(specs),
		logger:  log,
	}
}

func (g *BadgerGateway) noteKey(noteID string) []byte {
	return []byte("note/" + g.table + "/" + noteID)
}

func (g *BadgerGateway) indexPrefix(index, value string) []byte {
	return []byte("idx/" + g.table + "/" + index + "/" + hex.EncodeToString([]byte(value)) + "/")
}

func (g *BadgerGateway) indexKeys(note models.Note) [][]byte {
	keys := make([][]byte, 0, len(g.specs))
	for _, spec := range g.specs {
		value, _ := note.Attribute(spec.HashKey)
		keys = append(keys, append(g.indexPrefix(spec.Name, value), note.NoteID...))
	}
	return keys
}

func (g *BadgerGateway) load(txn *badger.Txn, noteID string) (models.Note, bool, error) {
	item, err := txn.Get(g.noteKey(noteID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Note{}, false, nil
	}
	if err != nil {
		return models.Note{}, false, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return models.Note{}, false, err
	}
	var note models.Note
	if err := note.FromJSON(data); err != nil {
		return models.Note{}, false, fmt.Errorf("corrupt note %s: %w", noteID, err)
	}
	return note, true, nil
}

func (g *BadgerGateway) store(txn *badger.Txn, prior *models.Note, note models.Note) error {
	if prior != nil {
		if err := g.unindex(txn, *prior); err != nil {
			return err
		}
	}
	data, err := note.ToJSON()
	if err != nil {
		return err
	}
	if err := txn.Set(g.noteKey(note.NoteID), data); err != nil {
		return err
	}
	for _, key := range g.indexKeys(note) {
		if err := txn.Set(key, nil); err != nil {
			return err
		}
	}
	return nil
}

func (g *BadgerGateway) unindex(txn *badger.Txn, note models.Note) error {
	for _, key := range g.indexKeys(note) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (g *BadgerGateway) PutItem(_ context.Context, note models.Note) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		prior, found, err := g.load(txn, note.NoteID)
		if err != nil {
			return err
		}
		if found {
			return g.store(txn, &prior, note)
		}
		return g.store(txn, nil, note)
	})
	if err != nil {
		return fmt.Errorf("failed to put note %s: %w", note.NoteID, err)
	}
	return nil
}

func (g *BadgerGateway) GetItem(_ context.Context, noteID string) (models.Note, bool, error) {
	var (
		note  models.Note
		found bool
	)
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		note, found, err = g.load(txn, noteID)
		return err
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to get note %s: %w", noteID, err)
	}
	return note, found, nil
}

func (g *BadgerGateway) UpdateItem(_ context.Context, noteID string, assignments map[string]any, condition Condition) (ConditionalWriteResult, error) {
	if err := condition.validate(); err != nil {
		return PreconditionFailed, err
	}
	if err := checkAssignments(assignments); err != nil {
		return PreconditionFailed, err
	}

	result := PreconditionFailed
	err := g.db.Update(func(txn *badger.Txn) error {
		prior, found, err := g.load(txn, noteID)
		if err != nil || !found {
			return err
		}
		if !condition.holds(prior) {
			return nil
		}
		next := prior
		if err := next.Apply(assignments); err != nil {
			return err
		}
		if err := g.store(txn, &prior, next); err != nil {
			return err
		}
		result = Updated(next)
		return nil
	})
	if err != nil {
		return PreconditionFailed, fmt.Errorf("failed to update note %s: %w", noteID, err)
	}
	return result, nil
}

func (g *BadgerGateway) DeleteItem(_ context.Context, noteID string) (models.Note, bool, error) {
	var (
		prior models.Note
		found bool
	)
	err := g.db.Update(func(txn *badger.Txn) error {
		var err error
		prior, found, err = g.load(txn, noteID)
		if err != nil || !found {
			return err
		}
		if err := g.unindex(txn, prior); err != nil {
			return err
		}
		return txn.Delete(g.noteKey(noteID))
	})
	if err != nil {
		return models.Note{}, false, fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}
	return prior, found, nil
}

func (g *BadgerGateway) QueryIndex(_ context.Context, index string, key KeyCondition, projection []string) ([]models.Note, error) {
	if _, err := g.indexes.lookup(index, key); err != nil {
		return nil, err
	}

	prefix := g.indexPrefix(index, key.Value)
	notes := make([]models.Note, 0)
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			noteID := string(bytes.TrimPrefix(it.Item().KeyCopy(nil), prefix))
			note, found, err := g.load(txn, noteID)
			if err != nil {
				return err
			}
			if !found {
				g.logger.Warn("Dangling index entry", zap.String("index", index), zap.String("noteId", noteID))
				continue
			}
			notes = append(notes, note.Project(projection))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index %s: %w", index, err)
	}
	return notes, nil
}

// Migrate is a no-op; badger needs no schema.
func (g *BadgerGateway) Migrate(context.Context) error {
	return nil
}

func (g *BadgerGateway) Close() error {
	return g.db.Close()
}
