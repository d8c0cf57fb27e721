// Package validator holds the request and environment checks run by every
// handler before it touches storage. Each check either passes or returns one
// of the ValidationError values declared in errors.go; none has side effects.
package validator

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
)

// NoteInput is the client-supplied part of a note.
type NoteInput struct {
	UserID   string
	Notebook string
	Text     string
}

func CheckRegion(cfg config.Config) error {
	if cfg.Region == "" {
		return ErrRegionNotSet
	}
	return nil
}

func CheckStorageTable(cfg config.Config) error {
	if cfg.Table == "" {
		return ErrTableNotSet
	}
	return nil
}

// CheckBody fails when the request carries no body. API Gateway sends an
// absent body as the empty string.
func CheckBody(req events.APIGatewayProxyRequest) error {
	if req.Body == "" {
		return ErrBodyNotSet
	}
	return nil
}

// CheckJSON parses the body. Anything other than a JSON object, including
// arrays and scalars, is rejected.
func CheckJSON(req events.APIGatewayProxyRequest) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(req.Body), &data); err != nil || data == nil {
		return nil, ErrBodyNotJSON
	}
	return data, nil
}

// CheckRequiredFields requires userId, notebook and text to be present as
// strings. Empty strings are accepted.
func CheckRequiredFields(data map[string]any) (NoteInput, error) {
	var input NoteInput
	fields := []struct {
		name string
		dst  *string
	}{
		{models.AttrUserID, &input.UserID},
		{models.AttrNotebook, &input.Notebook},
		{models.AttrText, &input.Text},
	}
	for _, f := range fields {
		s, ok := data[f.name].(string)
		if !ok {
			return NoteInput{}, ErrRequiredFieldsNotSet
		}
		*f.dst = s
	}
	return input, nil
}

func CheckPathID(req events.APIGatewayProxyRequest) (string, error) {
	if req.PathParameters == nil {
		return "", ErrPathIDNotSet
	}
	id, ok := req.PathParameters["id"]
	if !ok || id == "" {
		return "", ErrPathIDNotSet
	}
	return id, nil
}
