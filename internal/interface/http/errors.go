package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/pkg/response"
	"github.com/oksasatya/buytoro/pkg/validation"
)

// statusTable maps sentinel errors to HTTP statuses. Each handler file
// declares its own.
type statusTable map[error]int

func (t statusTable) lookup(err error) (int, bool) {
	for target, status := range t {
		if errors.Is(err, target) {
			return status, true
		}
	}
	var te *entity.TransitionError
	if errors.As(err, &te) {
		if te.Kind == entity.TransitionForbidden {
			return http.StatusForbidden, true
		}
		return http.StatusBadRequest, true
	}
	return 0, false
}

// fail answers with the mapped status and the error text, or with a logged
// 500 for anything unmapped.
func fail(c *gin.Context, logger *logrus.Logger, table statusTable, err error) {
	if status, ok := table.lookup(err); ok {
		response.Error[any](c, status, err.Error(), nil)
		return
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
	}
	_ = c.Error(err)
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
