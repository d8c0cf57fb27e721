package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"stoic-notes/notes/response"
)

type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Route identifies an API Gateway resource, e.g. GET /notes/{id}.
type Route struct {
	Method   string
	Resource string
}

func (r Route) String() string {
	return r.Method + " " + r.Resource
}

// Handler names accepted by ByName.
const (
	NameCreate           = "create"
	NameRead             = "read"
	NameUpdate           = "update"
	NameDelete           = "delete"
	NameSearchByUser     = "searchByUser"
	NameSearchByNotebook = "searchByNotebook"
)

type entry struct {
	name    string
	route   Route
	handler HandlerFunc
}

func (h *NoteHandler) entries() []entry {
	return []entry{
		{NameCreate, Route{http.MethodPost, "/notes"}, h.Create},
		{NameRead, Route{http.MethodGet, "/notes/{id}"}, h.Read},
		{NameUpdate, Route{http.MethodPut, "/notes/{id}"}, h.Update},
		{NameDelete, Route{http.MethodDelete, "/notes/{id}"}, h.Delete},
		{NameSearchByUser, Route{http.MethodGet, "/users/{id}/notes"}, h.SearchByUser},
		{NameSearchByNotebook, Route{http.MethodGet, "/notebooks/{id}/notes"}, h.SearchByNotebook},
	}
}

// Routes returns every route served by the handler.
func (h *NoteHandler) Routes() map[Route]HandlerFunc {
	routes := make(map[Route]HandlerFunc)
	for _, e := range h.entries() {
		routes[e.route] = e.handler
	}
	return routes
}

// ByName returns the handler deployed under name, for functions that serve a
// single operation.
func (h *NoteHandler) ByName(name string) (HandlerFunc, bool) {
	for _, e := range h.entries() {
		if e.name == name {
			return e.handler, true
		}
	}
	return nil, false
}

// Dispatch routes a proxy request by HTTP method and resource template.
func (h *NoteHandler) Dispatch(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	route := Route{Method: req.HTTPMethod, Resource: req.Resource}
	handler, ok := h.Routes()[route]
	if !ok {
		h.logger.Warn("No route for request", zap.Stringer("route", route))
		return response.Error(http.StatusNotFound, fmt.Errorf("route not found: %s", route)), nil
	}
	return handler(ctx, req)
}
