package apierror

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{BadRequest("bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{ValidationError("invalid"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{NotFound(""), http.StatusNotFound, "NOT_FOUND"},
		{PayloadTooLarge("too big"), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{InternalError(""), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{ServiceUnavailable(""), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.status, tc.err.StatusCode, tc.code)
		assert.Equal(t, tc.code, tc.err.Code)
		assert.NotEmpty(t, tc.err.Error())
	}
}

func TestToJSON_WithDetails(t *testing.T) {
	err := BadRequest("invalid id").WithDetails(FieldError{Field: "id", Message: "must be a positive integer"})

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string       `json:"code"`
			Message string       `json:"message"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(err.ToJSON(), &body))

	assert.False(t, body.Success)
	assert.Equal(t, "BAD_REQUEST", body.Error.Code)
	assert.Equal(t, "invalid id", body.Error.Message)
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, "id", body.Error.Details[0].Field)
}
