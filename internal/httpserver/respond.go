package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"retail-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors become a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrEmptyCart):
		status, kind = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, domain.ErrInvalidState):
		status, kind = http.StatusBadRequest, "invalid_state"
	case errors.Is(err, domain.ErrInvalidStatus):
		status, kind = http.StatusBadRequest, "invalid_status"
	case errors.Is(err, domain.ErrProductUnavailable):
		status, kind = http.StatusBadRequest, "product_unavailable"
	case errors.Is(err, domain.ErrValidation):
		status, kind = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": errorBody{Kind: "internal", Message: "internal error"},
		})
		return
	}

	c.JSON(status, gin.H{"error": errorBody{Kind: kind, Message: err.Error()}})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": errorBody{Kind: "validation_failed", Message: message},
	})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
