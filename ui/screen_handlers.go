package ui

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/internal/analysis"
	"statflow/internal/wizard"
)

type createScreenRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type kindInfo struct {
	Kind     domain.Kind     `json:"kind"`
	Title    string          `json:"title"`
	Settings domain.Settings `json:"default_settings"`
}

// handleKinds lists the analyses a screen can be created for
func (s *Server) handleKinds(c *gin.Context) {
	kinds := make([]kindInfo, 0, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		kinds = append(kinds, kindInfo{Kind: k, Title: k.Title(), Settings: domain.DefaultSettings(k)})
	}
	body := gin.H{"kinds": kinds}
	if s.exports != nil {
		body["export_formats"] = s.exports.Formats()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleListScreens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"screens": s.screens.List()})
}

func (s *Server) handleCreateScreen(c *gin.Context) {
	var req createScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body must name an analysis kind")
		return
	}
	screen, err := s.screens.Create(req.Kind)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	s.log.Info("created %s screen %s", screen.Kind(), screen.ID())
	c.JSON(http.StatusCreated, screen.View())
}

func (s *Server) handleGetScreen(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) handleDeleteScreen(c *gin.Context) {
	id, ok := s.screenID(c)
	if !ok {
		return
	}
	if err := s.screens.Close(id); err != nil {
		s.respondError(c, err, nil)
		return
	}
	s.log.Info("closed screen %s", id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetSample(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	sample, err := s.readSample(c)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	if err := screen.SetSample(sample); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) handleSetSelection(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	var sel dataset.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		badRequest(c, "invalid selection: "+err.Error())
		return
	}
	if err := screen.SetSelection(sel); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) handleSetSettings(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "invalid settings: "+err.Error())
		return
	}
	if err := screen.SetSettings(settings); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) handleGoTo(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		badRequest(c, "step must be a number")
		return
	}
	if err := screen.GoTo(wizard.Step(n)); err != nil {
		s.respondError(c, err, gin.H{"view": screen.View()})
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) handlePrevious(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	if err := screen.Previous(); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

// handleNext advances the wizard; at the validation step this blocks on
// the analysis run.
func (s *Server) handleNext(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	action, err := screen.Next(runContext(c))
	if err != nil {
		s.respondError(c, err, gin.H{"action": action, "view": screen.View()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action, "view": screen.View()})
}

func (s *Server) handleRun(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	result, err := screen.Run(runContext(c))
	if err != nil {
		s.respondError(c, err, gin.H{"view": screen.View()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": screen.View(), "result": result.Raw()})
}

func (s *Server) handleEvents(c *gin.Context) {
	if _, ok := s.screen(c); !ok {
		return
	}
	s.hub.HandleSSE(c)
}

// runContext detaches a run from the request so a client navigating away
// does not turn the run into a failure; the compute client bounds it.
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (s *Server) screenID(c *gin.Context) (core.ScreenID, bool) {
	id, err := core.ParseScreenID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) screen(c *gin.Context) (*analysis.Screen, bool) {
	id, ok := s.screenID(c)
	if !ok {
		return nil, false
	}
	screen, err := s.screens.Get(id)
	if err != nil {
		s.respondError(c, err, nil)
		return nil, false
	}
	return screen, true
}
