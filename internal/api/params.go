package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/murmurapp/murmur/internal/feed"
)

// listParams reads the cursor and limit query parameters. Limit values the
// listing layer considers out of range are clamped there, not here.
func listParams(c *gin.Context) feed.ListParams {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return feed.ListParams{
		Cursor: c.Query("cursor"),
		Limit:  limit,
	}
}

// idParam parses a numeric path parameter. A second return of false means the
// handler already wrote a validation error response.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, CodeValidation, "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
