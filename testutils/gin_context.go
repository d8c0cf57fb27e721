package testutils

import (
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
)

// NoteRequestContext builds a gin context for a request against a note route.
// id, when non-empty, is bound as the :id path parameter the way the router
// binds /notes/:id, /users/:id/notes and /notebooks/:id/notes.
func NoteRequestContext(method, target, body, id string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if id != "" {
		c.Params = gin.Params{{Key: "id", Value: id}}
	}
	return c, w
}
