package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Attribute names as stored in the key-value table and rendered in JSON.
const (
	AttrNoteID    = "noteId"
	AttrUserID    = "userId"
	AttrNotebook  = "notebook"
	AttrText      = "text"
	AttrCreatedAt = "createdAt"
	AttrUpdatedAt = "updatedAt"
)

// SummaryAttributes is the projection returned by index searches.
var SummaryAttributes = []string{AttrNoteID, AttrUserID, AttrNotebook, AttrText}

type Note struct {
	NoteID    string `gorm:"primaryKey;index:idx_notes_user_note,priority:2;index:idx_notes_notebook_note,priority:2" json:"noteId" dynamodbav:"noteId"`
	UserID    string `gorm:"not null;index:idx_notes_user_note,priority:1" json:"userId" dynamodbav:"userId"`
	Notebook  string `gorm:"not null;index:idx_notes_notebook_note,priority:1" json:"notebook" dynamodbav:"notebook"`
	Text      string `gorm:"type:text;not null" json:"text" dynamodbav:"text"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false" json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false" json:"updatedAt" dynamodbav:"updatedAt"`
}

// NoteSummary is a note without its timestamps.
type NoteSummary struct {
	NoteID   string `json:"noteId"`
	UserID   string `json:"userId"`
	Notebook string `json:"notebook"`
	Text     string `json:"text"`
}

func (n *Note) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n Note) Summary() NoteSummary {
	return NoteSummary{
		NoteID:   n.NoteID,
		UserID:   n.UserID,
		Notebook: n.Notebook,
		Text:     n.Text,
	}
}

// Apply sets the named attributes on the note. Unknown attribute names and
// values of the wrong type are rejected and leave the note unchanged.
func (n *Note) Apply(assignments map[string]any) error {
	next := *n
	for name, value := range assignments {
		switch name {
		case AttrNoteID, AttrUserID, AttrNotebook, AttrText:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("attribute %s: expected string, got %T", name, value)
			}
			switch name {
			case AttrNoteID:
				next.NoteID = s
			case AttrUserID:
				next.UserID = s
			case AttrNotebook:
				next.Notebook = s
			case AttrText:
				next.Text = s
			}
		case AttrCreatedAt, AttrUpdatedAt:
			ms, ok := value.(int64)
			if !ok {
				return fmt.Errorf("attribute %s: expected int64, got %T", name, value)
			}
			if name == AttrCreatedAt {
				next.CreatedAt = ms
			} else {
				next.UpdatedAt = ms
			}
		default:
			return fmt.Errorf("unknown attribute %q", name)
		}
	}
	*n = next
	return nil
}

// Project keeps only the named attributes and zeroes the rest.
func (n Note) Project(attributes []string) Note {
	if len(attributes) == 0 {
		return n
	}
	var out Note
	for _, name := range attributes {
		switch name {
		case AttrNoteID:
			out.NoteID = n.NoteID
		case AttrUserID:
			out.UserID = n.UserID
		case AttrNotebook:
			out.Notebook = n.Notebook
		case AttrText:
			out.Text = n.Text
		case AttrCreatedAt:
			out.CreatedAt = n.CreatedAt
		case AttrUpdatedAt:
			out.UpdatedAt = n.UpdatedAt
		}
	}
	return out
}

// Attribute returns the string value of a key attribute.
func (n Note) Attribute(name string) (string, bool) {
	switch name {
	case AttrNoteID:
		return n.NoteID, true
	case AttrUserID:
		return n.UserID, true
	case AttrNotebook:
		return n.Notebook, true
	case AttrText:
		return n.Text, true
	}
	return "", false
}

// EpochMillis converts t to milliseconds since the Unix epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
