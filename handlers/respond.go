package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bitirgenalperen/ilkevim-sub000/initializers"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/calculator"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
	"github.com/bitirgenalperen/ilkevim-sub000/repository"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
)

// respondError maps a domain error onto the response envelope. Anything unknown
// is logged and reported as an internal error without leaking its text.
func respondError(c *gin.Context, err error) {
	var qErr *query.ValidationError
	var cErr *calculator.ValidationError
	switch {
	case errors.As(err, &qErr):
		c.JSON(http.StatusBadRequest, types.NewErrorResponseWithDetails(types.ErrorCodeValidation, qErr.Error(),
			map[string]interface{}{"field": qErr.Field, "value": qErr.Value}))
	case errors.As(err, &cErr):
		c.JSON(http.StatusBadRequest, types.NewErrorResponseWithDetails(types.ErrorCodeValidation, cErr.Error(),
			map[string]interface{}{"field": cErr.Field}))
	case errors.Is(err, repository.ErrNotFound):
		notFound(c)
	case errors.Is(err, initializers.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeTooLarge, err.Error()))
	case errors.Is(err, initializers.ErrFileTypeNotAllowed):
		c.JSON(http.StatusUnsupportedMediaType, types.NewErrorResponse(types.ErrorCodeUnsupported, err.Error()))
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "route", c.FullPath(), "requestId", c.GetString("requestId"), "err", err)
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "internal server error"))
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "not found"))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, message))
}

// intParam reads a positive integer path parameter, answering 400 when it is not one.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
