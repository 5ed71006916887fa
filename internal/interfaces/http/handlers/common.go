// Package handlers implements the gin handlers of the SeqPrep HTTP API.
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SeqPrep/internal/interfaces/http/middleware"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// parsePagination extracts page and page_size from query parameters.
// Missing or out-of-range values fall back to the defaults.
func parsePagination(c *gin.Context) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: defaultPageSize}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageSize {
			p.PageSize = n
		}
	}
	return p
}

func writeSuccess[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(status, resp)
}

func writePaginated[T any](c *gin.Context, data T, p common.Pagination) {
	resp := common.NewPaginatedResponse(data, p)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(http.StatusOK, resp)
}

// writeAppError maps err to an HTTP status through its error code.  Errors
// without a code and server-side failures are masked.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ae *errors.AppError
	if !stderrors.As(err, &ae) {
		ae = errors.Internal(errors.DefaultMessageForCode(errors.CodeInternal))
	}
	status := errors.HTTPStatusForCode(ae.Code)

	message, detail := ae.Message, ae.Detail
	if errors.IsServerError(ae.Code) {
		message, detail = errors.DefaultMessageForCode(ae.Code), ""
	}
	resp := common.NewErrorResponse(ae.Code.String(), message, detail)
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}
