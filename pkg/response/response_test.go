package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-rest-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
)

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, rec.Body.String())
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithMeta(rec, http.StatusOK, []int{}, 2, 10, 11)

	assert.JSONEq(t, `{"success":true,"data":[],"meta":{"page":2,"limit":10,"total":11}}`, rec.Body.String())
}

func TestError_WrappedAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("lookup: %w", apierror.NotFound("item 3 not found")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "item 3 not found")
}

func TestError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}
