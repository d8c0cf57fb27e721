package testutils

import (
	"database/sql"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stoic-notes/notes/database"
	"stoic-notes/notes/models"
)

// SetupMockDB sets up a mock database connection
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		panic(err)
	}

	mockDB := &database.Database{
		DB: gormDB,
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// MockNoteRows creates mock SQL rows for notes.
func MockNoteRows(notes ...models.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"note_id", "user_id", "notebook", "text", "created_at", "updated_at"})
	for _, note := range notes {
		rows.AddRow(note.NoteID, note.UserID, note.Notebook, note.Text, note.CreatedAt, note.UpdatedAt)
	}
	return rows
}
