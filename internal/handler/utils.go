package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/books-crud-api/internal/validation"
)

const (
	CodeInvalidBookID = "INVALID_BOOK_ID"
	CodeBookNotFound  = "BOOK_NOT_FOUND"
)

// parseID reads the :id path parameter. On failure it writes a 400 and
// returns false.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		writeError(c, http.StatusBadRequest,
			CodeInvalidBookID,
			"book id must be a non-negative integer",
		)
		return 0, false
	}
	return uint(id), true
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
		Errors:  nil,
	})
}

func writeNotFound(c *gin.Context, id uint) {
	writeError(c, http.StatusNotFound,
		CodeBookNotFound,
		fmt.Sprintf("Book with ID %d not found", id),
	)
}
