package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/pkg/response"
)

// writeError maps service errors to HTTP statuses: missing entities to
// 404, rejected input to 400, strict-policy overdrafts to 422,
// everything else to 500.
func writeError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	var fundsErr *apperr.InsufficientFundsError

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)
	return userIDStr
}
