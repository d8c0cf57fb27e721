// Package response renders payloads into API Gateway proxy responses.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

var ErrSerialization = errors.New("payload cannot be serialized to JSON")

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

func headers() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// Respond serializes payload as the JSON body of a response with the given
// status. Raw byte slices are rejected rather than base64 encoded.
func Respond(status int, payload interface{}) (events.APIGatewayProxyResponse, error) {
	if _, ok := payload.([]byte); ok {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("%w: raw bytes", ErrSerialization)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return events.APIGatewayProxyResponse{
		IsBase64Encoded: false,
		StatusCode:      status,
		Headers:         headers(),
		Body:            string(body),
	}, nil
}

// Error builds an error response. It cannot fail.
func Error(status int, err error) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(ErrorBody{Error: err.Error()})
	return events.APIGatewayProxyResponse{
		IsBase64Encoded: false,
		StatusCode:      status,
		Headers:         headers(),
		Body:            string(body),
	}
}

func OK(payload interface{}) (events.APIGatewayProxyResponse, error) {
	return Respond(http.StatusOK, payload)
}

func Created(payload interface{}) (events.APIGatewayProxyResponse, error) {
	return Respond(http.StatusCreated, payload)
}
