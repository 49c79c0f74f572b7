package backend

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-success response from the authentication API, carrying
// the structured message from its body when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// errorBody is the API's error envelope.
type errorBody struct {
	Message string `json:"Message"`
}

// newAPIError builds an APIError from a non-success response, pulling the
// Message field out of the body when it parses.
func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &APIError{Status: status, Message: eb.Message}
}
