package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
	"github.com/yungbote/eduverse-backend/internal/platform/validation"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"apierr", apierr.Newf(http.StatusForbidden, "conversation_limit", "Maximum %d conversations allowed", 10), 403, "conversation_limit", "Maximum 10 conversations allowed"},
		{"wrapped not found", fmt.Errorf("load post: %w", pkgerrors.ErrNotFound), 404, "not_found", "load post: not found"},
		{"unauthorized", pkgerrors.ErrUnauthorized, 401, "unauthorized", "unauthorized"},
		{"forbidden", pkgerrors.ErrForbidden, 403, "forbidden", "forbidden"},
		{"invalid", pkgerrors.ErrInvalidArgument, 400, "invalid_argument", "invalid argument"},
		{"conflict", pkgerrors.ErrConflict, 409, "conflict", "conflict"},
		{"limit", pkgerrors.ErrLimitExceeded, 403, "limit_exceeded", "limit exceeded"},
		{"validation", &validation.RequestValidationError{Fields: []validation.FieldError{{Field: "email", Tag: "email", Message: "Enter a valid email address"}}}, 400, "validation_error", "Enter a valid email address"},
		{"unknown", errors.New("pq: connection reset"), 500, "internal_error", "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			require.Equal(t, tc.status, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.message, env.Error.Message)
			assert.Len(t, c.Errors, 1)
		})
	}
}
