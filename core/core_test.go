package core_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anilink/core"
)

func TestJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "http error with message",
			err:     core.NewHTTPError(http.StatusBadRequest, "missing_code", "Authorization code is required"),
			status:  http.StatusBadRequest,
			code:    "missing_code",
			message: "Authorization code is required",
		},
		{
			name:    "wrapped http error without message",
			err:     fmt.Errorf("ctx: %w", core.ErrNotFound),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "Not Found",
		},
		{
			name:    "plain error is hidden",
			err:     errors.New("dial tcp: secret detail"),
			status:  http.StatusInternalServerError,
			code:    "internal_server_error",
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			require.NoError(t, core.JSONError(rec, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body core.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var v struct{ Code string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"abc"}`))
	require.NoError(t, core.DecodeJSON(r, &v))
	assert.Equal(t, "abc", v.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, core.DecodeJSON(r, &v), core.ErrBadRequest)
}

func TestHTTPError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bad_request", core.ErrBadRequest.Error())
	assert.Equal(t, "nope", core.NewHTTPError(http.StatusTeapot, "teapot", "nope").Error())
}
