package response

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	payload := map[string]interface{}{"noteId": "abc", "createdAt": int64(1718000000123)}

	resp, err := Respond(http.StatusOK, payload)
	require.NoError(t, err)

	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, resp.Headers)
	assert.JSONEq(t, `{"noteId":"abc","createdAt":1718000000123}`, resp.Body)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, "abc", decoded["noteId"])
}

func TestRespond_EmptyObjectAndList(t *testing.T) {
	resp, err := OK(struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Body)

	resp, err = OK([]string{})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Body)

	resp, err = Created(map[string]string{"noteId": "abc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRespond_Unserializable(t *testing.T) {
	testCases := map[string]interface{}{
		"bytes":   []byte("raw"),
		"channel": make(chan int),
		"func":    func() {},
		"nan":     math.NaN(),
	}
	for name, payload := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Respond(http.StatusOK, payload)
			assert.ErrorIs(t, err, ErrSerialization)
		})
	}
}

func TestError(t *testing.T) {
	resp := Error(http.StatusBadRequest, errors.New("validation failed: request body is missing"))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.JSONEq(t, `{"error":"validation failed: request body is missing"}`, resp.Body)
}
