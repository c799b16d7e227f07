package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"app-builder-api/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err        error
		wantStatus int
		wantError  string
	}{
		{fmt.Errorf("%w: packageName is required", apperrors.ErrValidation), http.StatusBadRequest, "validation error: packageName is required"},
		{fmt.Errorf("%w: db down at 10.1.2.3", apperrors.ErrStorage), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/submit", nil)

		FromError(c, tc.err)

		assert.Equal(t, tc.wantStatus, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, tc.wantError, body.Error)
	}
}
