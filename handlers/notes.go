// Package handlers implements the note API as API Gateway proxy handlers.
//
// Every handler runs the same pipeline: environment checks, input checks,
// the service call and finally rendering. The first failing step decides the
// response. Handlers never return a non-nil error to the Lambda runtime;
// failures are reported through the status code.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/models"
	"stoic-notes/notes/response"
	"stoic-notes/notes/services"
	"stoic-notes/notes/utils/logging"
	"stoic-notes/notes/validator"
)

type NoteHandler struct {
	cfg    config.Config
	notes  services.NoteServiceInterface
	logger *zap.Logger
}

func NewNoteHandler(cfg config.Config, notes services.NoteServiceInterface, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{cfg: cfg, notes: notes, logger: logger}
}

var emptyObject = map[string]interface{}{}

func statusFor(err error) int {
	var verr *validator.ValidationError
	if errors.As(err, &verr) && verr.Kind == validator.InputInvalid {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *NoteHandler) fail(op string, err error) (events.APIGatewayProxyResponse, error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Warn("Request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	return response.Error(status, err), nil
}

func (h *NoteHandler) respond(op string, status int, payload interface{}) (events.APIGatewayProxyResponse, error) {
	resp, err := response.Respond(status, payload)
	if err != nil {
		return h.fail(op, err)
	}
	return resp, nil
}

func (h *NoteHandler) checkEnvironment() error {
	if err := validator.CheckRegion(h.cfg); err != nil {
		return err
	}
	return validator.CheckStorageTable(h.cfg)
}

func (h *NoteHandler) readInput(req events.APIGatewayProxyRequest) (validator.NoteInput, error) {
	if err := validator.CheckBody(req); err != nil {
		return validator.NoteInput{}, err
	}
	data, err := validator.CheckJSON(req)
	if err != nil {
		return validator.NoteInput{}, err
	}
	return validator.CheckRequiredFields(data)
}

func noteOrEmpty(note *models.Note) interface{} {
	if note == nil {
		return emptyObject
	}
	return note
}

func (h *NoteHandler) Create(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "CreateNote"
	defer logging.LogDuration(ctx, h.logger, op)()

	if err := h.checkEnvironment(); err != nil {
		return h.fail(op, err)
	}
	input, err := h.readInput(req)
	if err != nil {
		return h.fail(op, err)
	}

	note, err := h.notes.CreateNote(ctx, input.UserID, input.Notebook, input.Text)
	if err != nil {
		return h.fail(op, err)
	}
	return h.respond(op, http.StatusCreated, note)
}

func (h *NoteHandler) Read(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "ReadNote"
	defer logging.LogDuration(ctx, h.logger, op)()

	if err := h.checkEnvironment(); err != nil {
		return h.fail(op, err)
	}
	id, err := validator.CheckPathID(req)
	if err != nil {
		return h.fail(op, err)
	}

	note, err := h.notes.GetNoteById(ctx, id)
	if err != nil {
		return h.fail(op, err)
	}
	return h.respond(op, http.StatusOK, noteOrEmpty(note))
}

func (h *NoteHandler) Update(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "UpdateNote"
	defer logging.LogDuration(ctx, h.logger, op)()

	if err := h.checkEnvironment(); err != nil {
		return h.fail(op, err)
	}
	id, err := validator.CheckPathID(req)
	if err != nil {
		return h.fail(op, err)
	}
	input, err := h.readInput(req)
	if err != nil {
		return h.fail(op, err)
	}

	// userId is required in the body but the owner of a note never changes.
	note, err := h.notes.UpdateNote(ctx, id, services.NoteUpdate{Notebook: input.Notebook, Text: input.Text})
	if err != nil {
		return h.fail(op, err)
	}
	return h.respond(op, http.StatusOK, noteOrEmpty(note))
}

func (h *NoteHandler) Delete(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "DeleteNote"
	defer logging.LogDuration(ctx, h.logger, op)()

	if err := h.checkEnvironment(); err != nil {
		return h.fail(op, err)
	}
	id, err := validator.CheckPathID(req)
	if err != nil {
		return h.fail(op, err)
	}

	note, err := h.notes.DeleteNote(ctx, id)
	if err != nil {
		return h.fail(op, err)
	}
	h.logger.Info("Deleted note", zap.String("noteId", id), zap.Bool("existed", note != nil))
	return h.respond(op, http.StatusOK, noteOrEmpty(note))
}

func (h *NoteHandler) SearchByUser(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "SearchNotesByUser"
	defer logging.LogDuration(ctx, h.logger, op)()

	return h.search(ctx, op, req, services.NoteServiceInterface.SearchNotesByUser)
}

func (h *NoteHandler) SearchByNotebook(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const op = "SearchNotesByNotebook"
	defer logging.LogDuration(ctx, h.logger, op)()

	return h.search(ctx, op, req, services.NoteServiceInterface.SearchNotesByNotebook)
}

func (h *NoteHandler) search(ctx context.Context, op string, req events.APIGatewayProxyRequest, find func(services.NoteServiceInterface, context.Context, string) ([]models.NoteSummary, error)) (events.APIGatewayProxyResponse, error) {
	if err := h.checkEnvironment(); err != nil {
		return h.fail(op, err)
	}
	id, err := validator.CheckPathID(req)
	if err != nil {
		return h.fail(op, err)
	}

	notes, err := find(h.notes, ctx, id)
	if err != nil {
		return h.fail(op, err)
	}
	if notes == nil {
		notes = []models.NoteSummary{}
	}
	return h.respond(op, http.StatusOK, notes)
}
