package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"statflow/domain/core"
)

const defaultRunLimit = 50

// handleListRuns returns the run history, newest first, optionally for a
// single screen
func (s *Server) handleListRuns(c *gin.Context) {
	var screenID core.ScreenID
	if raw := c.Query("screen_id"); raw != "" {
		id, err := core.ParseScreenID(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		screenID = id
	}
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative number")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(c.Request.Context(), screenID, limit)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := s.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, run)
}
