package routes

import (
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"

	"stoic-notes/notes/handlers"
	"stoic-notes/notes/response"
)

// RegisterNoteRoutes mounts every note handler on group, translating API
// Gateway resource templates such as /notes/{id} to gin paths.
func RegisterNoteRoutes(group *gin.RouterGroup, noteHandler *handlers.NoteHandler) {
	for route, handler := range noteHandler.Routes() {
		group.Handle(route.Method, ginPath(route.Resource), proxy(route.Resource, handler))
	}
}

func ginPath(resource string) string {
	segments := strings.Split(resource, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			segments[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
		}
	}
	return strings.Join(segments, "/")
}

func proxy(resource string, handler handlers.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := ProxyRequest(c, resource)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := handler(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			resp = response.Error(http.StatusInternalServerError, err)
		}
		WriteProxyResponse(c, resp)
	}
}

// ProxyRequest converts an HTTP request into the event API Gateway would
// deliver for resource.
func ProxyRequest(c *gin.Context, resource string) (events.APIGatewayProxyRequest, error) {
	var body string
	if c.Request.Body != nil {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return events.APIGatewayProxyRequest{}, err
		}
		body = string(data)
	}

	req := events.APIGatewayProxyRequest{
		Resource:   resource,
		Path:       c.Request.URL.Path,
		HTTPMethod: c.Request.Method,
		Body:       body,
	}
	if len(c.Params) > 0 {
		req.PathParameters = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			req.PathParameters[p.Key] = p.Value
		}
	}
	if len(c.Request.Header) > 0 {
		req.Headers = make(map[string]string, len(c.Request.Header))
		req.MultiValueHeaders = make(map[string][]string, len(c.Request.Header))
		for key, values := range c.Request.Header {
			req.Headers[key] = values[0]
			req.MultiValueHeaders[key] = values
		}
	}
	if query := c.Request.URL.Query(); len(query) > 0 {
		req.QueryStringParameters = make(map[string]string, len(query))
		req.MultiValueQueryStringParameters = query
		for key, values := range query {
			req.QueryStringParameters[key] = values[0]
		}
	}
	return req, nil
}

func WriteProxyResponse(c *gin.Context, resp events.APIGatewayProxyResponse) {
	contentType := "application/json"
	for key, value := range resp.Headers {
		if strings.EqualFold(key, "Content-Type") {
			contentType = value
			continue
		}
		c.Header(key, value)
	}
	c.Data(resp.StatusCode, contentType, []byte(resp.Body))
}
