package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

func contractConfig(backend string) config.Config {
	return config.Config{
		Region:         "us-east-1",
		Table:          "notes",
		StorageBackend: backend,
		SQLitePath:     ":memory:",
		LogLevel:       "info",
	}
}

func gatewayEngines(t *testing.T) map[string]func(t *testing.T) Gateway {
	return map[string]func(t *testing.T) Gateway{
		"sqlite": func(t *testing.T) Gateway {
			cfg := contractConfig(config.BackendSQLite)
			db, err := Setup(cfg, zap.NewNop())
			require.NoError(t, err)
			gw := NewGormGateway(db, cfg)
			require.NoError(t, gw.Migrate(context.Background()))
			t.Cleanup(func() { gw.Close() })
			return gw
		},
		"badger": func(t *testing.T) Gateway {
			cfg := contractConfig(config.BackendBadger)
			gw, err := OpenBadgerGateway(cfg, zap.NewNop())
			require.NoError(t, err)
			require.NoError(t, gw.Migrate(context.Background()))
			t.Cleanup(func() { gw.Close() })
			return gw
		},
	}
}

func runContract(t *testing.T, test func(t *testing.T, gw Gateway)) {
	for name, open := range gatewayEngines(t) {
		t.Run(name, func(t *testing.T) {
			test(t, open(t))
		})
	}
}

func sampleNote(id, user, notebook string) models.Note {
	return models.Note{
		NoteID:    id,
		UserID:    user,
		Notebook:  notebook,
		Text:      "text of " + id,
		CreatedAt: 1718000000000,
		UpdatedAt: 1718000000000,
	}
}

const (
	userIndex     = "notes-userid-noteid-index"
	notebookIndex = "notes-notebook-noteid-index"
)

func TestGateway_PutThenGet(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		note := sampleNote("0190b7c4-0001", "azrael", "system")

		require.NoError(t, gw.PutItem(ctx, note))

		got, found, err := gw.GetItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, note, got)
	})
}

func TestGateway_GetMissing(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		_, found, err := gw.GetItem(context.Background(), "does-not-exist")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGateway_PutOverwritesAndReindexes(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		note := sampleNote("0190b7c4-0001", "azrael", "system")
		require.NoError(t, gw.PutItem(ctx, note))

		note.Notebook = "journal"
		note.Text = "moved"
		require.NoError(t, gw.PutItem(ctx, note))

		got, found, err := gw.GetItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "moved", got.Text)

		old, err := gw.QueryIndex(ctx, notebookIndex, KeyCondition{Attribute: models.AttrNotebook, Value: "system"}, models.SummaryAttributes)
		require.NoError(t, err)
		assert.Empty(t, old)

		moved, err := gw.QueryIndex(ctx, notebookIndex, KeyCondition{Attribute: models.AttrNotebook, Value: "journal"}, models.SummaryAttributes)
		require.NoError(t, err)
		assert.Len(t, moved, 1)
	})
}

func TestGateway_UpdateExisting(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		note := sampleNote("0190b7c4-0001", "azrael", "system")
		require.NoError(t, gw.PutItem(ctx, note))

		result, err := gw.UpdateItem(ctx, note.NoteID, map[string]any{
			models.AttrNotebook:  "journal",
			models.AttrText:      "updated",
			models.AttrUpdatedAt: int64(1718000000500),
		}, KeyExists)
		require.NoError(t, err)

		updated, ok := result.Item()
		require.True(t, ok)
		assert.Equal(t, models.Note{
			NoteID:    note.NoteID,
			UserID:    "azrael",
			Notebook:  "journal",
			Text:      "updated",
			CreatedAt: note.CreatedAt,
			UpdatedAt: 1718000000500,
		}, updated)

		stored, _, err := gw.GetItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)

		byNotebook, err := gw.QueryIndex(ctx, notebookIndex, KeyCondition{Attribute: models.AttrNotebook, Value: "journal"}, models.SummaryAttributes)
		require.NoError(t, err)
		assert.Len(t, byNotebook, 1)
	})
}

func TestGateway_UpdateMissingFailsPrecondition(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()

		result, err := gw.UpdateItem(ctx, "does-not-exist", map[string]any{models.AttrText: "x"}, KeyExists)
		require.NoError(t, err)
		_, ok := result.Item()
		assert.False(t, ok)

		_, found, err := gw.GetItem(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGateway_UpdateUnchangedSince(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		note := sampleNote("0190b7c4-0001", "azrael", "system")
		require.NoError(t, gw.PutItem(ctx, note))

		result, err := gw.UpdateItem(ctx, note.NoteID, map[string]any{
			models.AttrText:      "stale",
			models.AttrUpdatedAt: note.UpdatedAt + 5,
		}, UnchangedSince(note.UpdatedAt-1))
		require.NoError(t, err)
		_, ok := result.Item()
		assert.False(t, ok)

		stored, _, err := gw.GetItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.Equal(t, note, stored)

		result, err = gw.UpdateItem(ctx, note.NoteID, map[string]any{
			models.AttrText:      "fresh",
			models.AttrUpdatedAt: note.UpdatedAt + 1,
		}, UnchangedSince(note.UpdatedAt))
		require.NoError(t, err)
		updated, ok := result.Item()
		require.True(t, ok)
		assert.Equal(t, "fresh", updated.Text)
		assert.Equal(t, note.UpdatedAt+1, updated.UpdatedAt)
	})
}

func TestGateway_UpdateRejectsBadInput(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()

		_, err := gw.UpdateItem(ctx, "abc", map[string]any{models.AttrText: "x"}, Condition{AttributeExists: models.AttrText})
		assert.ErrorIs(t, err, ErrUnsupportedCondition)

		_, err = gw.UpdateItem(ctx, "abc", map[string]any{models.AttrNoteID: "other"}, KeyExists)
		assert.ErrorIs(t, err, ErrInvalidAssignment)

		_, err = gw.UpdateItem(ctx, "abc", map[string]any{models.AttrText: 7}, KeyExists)
		assert.ErrorIs(t, err, ErrInvalidAssignment)
	})
}

func TestGateway_DeleteReturnsPriorItem(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		note := sampleNote("0190b7c4-0001", "azrael", "system")
		require.NoError(t, gw.PutItem(ctx, note))

		prior, found, err := gw.DeleteItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, note, prior)

		_, found, err = gw.GetItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.False(t, found)

		byUser, err := gw.QueryIndex(ctx, userIndex, KeyCondition{Attribute: models.AttrUserID, Value: "azrael"}, models.SummaryAttributes)
		require.NoError(t, err)
		assert.Empty(t, byUser)

		_, found, err = gw.DeleteItem(ctx, note.NoteID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGateway_QueryIndexFiltersOrdersAndProjects(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		for _, note := range []models.Note{
			sampleNote("0190b7c4-0003", "azrael", "journal"),
			sampleNote("0190b7c4-0001", "azrael", "system"),
			sampleNote("0190b7c4-0002", "gargamel", "system"),
			sampleNote("0190b7c4-0004", "azrael", "system"),
		} {
			require.NoError(t, gw.PutItem(ctx, note))
		}

		byUser, err := gw.QueryIndex(ctx, userIndex, KeyCondition{Attribute: models.AttrUserID, Value: "azrael"}, models.SummaryAttributes)
		require.NoError(t, err)
		require.Len(t, byUser, 3)
		assert.Equal(t, "0190b7c4-0001", byUser[0].NoteID)
		assert.Equal(t, "0190b7c4-0003", byUser[1].NoteID)
		assert.Equal(t, "0190b7c4-0004", byUser[2].NoteID)
		for _, note := range byUser {
			assert.Equal(t, "azrael", note.UserID)
			assert.Equal(t, "text of "+note.NoteID, note.Text)
			assert.Zero(t, note.CreatedAt)
			assert.Zero(t, note.UpdatedAt)
		}

		byNotebook, err := gw.QueryIndex(ctx, notebookIndex, KeyCondition{Attribute: models.AttrNotebook, Value: "system"}, models.SummaryAttributes)
		require.NoError(t, err)
		require.Len(t, byNotebook, 3)
		assert.Equal(t, "0190b7c4-0001", byNotebook[0].NoteID)
		assert.Equal(t, "0190b7c4-0002", byNotebook[1].NoteID)
		assert.Equal(t, "0190b7c4-0004", byNotebook[2].NoteID)

		none, err := gw.QueryIndex(ctx, userIndex, KeyCondition{Attribute: models.AttrUserID, Value: "nobody"}, models.SummaryAttributes)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestGateway_QueryIndexRejectsUnknownIndex(t *testing.T) {
	runContract(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()

		_, err := gw.QueryIndex(ctx, "no-such-index", KeyCondition{Attribute: models.AttrUserID, Value: "azrael"}, nil)
		assert.ErrorIs(t, err, ErrUnknownIndex)

		_, err = gw.QueryIndex(ctx, userIndex, KeyCondition{Attribute: models.AttrNotebook, Value: "system"}, nil)
		assert.ErrorIs(t, err, ErrInvalidKeyCondition)
	})
}
