package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("request_id", "req-1")

		Success(c, http.StatusCreated, map[string]string{"id": "1"}, "created", nil)

		require.Equal(t, http.StatusCreated, w.Code)
		var body APIResponse[map[string]string]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "req-1", body.RequestID)
		assert.Equal(t, "1", body.Data["id"])
	})

	t.Run("error defaults to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error[any](c, 0, "bad input", map[string]string{"name": "is required"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body APIResponse[any]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "bad input", body.Message)
	})

	t.Run("abort stops chain", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Abort(c, http.StatusUnauthorized, "not authorized, no token", nil)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
