package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"statflow/internal/export"
)

// bundleFormat is the pseudo format that zips several exports
const bundleFormat = "zip"

var defaultBundle = []export.Format{export.FormatXLSX, export.FormatHTML, export.FormatMarkdown, export.FormatJSON}

// handleExport downloads the last result of a screen. /export/zip takes a
// comma separated ?formats= list.
func (s *Server) handleExport(c *gin.Context) {
	screen, ok := s.screen(c)
	if !ok {
		return
	}
	snap, err := screen.Snapshot()
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	pkg := export.NewPackage(snap, s.now())

	var artifact export.Artifact
	if strings.EqualFold(c.Param("format"), bundleFormat) {
		formats, err := parseFormats(c.Query("formats"))
		if err != nil {
			s.respondError(c, err, nil)
			return
		}
		artifact, err = s.exports.Bundle(c.Request.Context(), pkg, formats)
		if err != nil {
			s.respondError(c, err, nil)
			return
		}
	} else {
		format, err := export.ParseFormat(c.Param("format"))
		if err != nil {
			s.respondError(c, err, nil)
			return
		}
		artifact, err = s.exports.Export(c.Request.Context(), pkg, format)
		if err != nil {
			s.respondError(c, err, nil)
			return
		}
	}

	s.log.Info("exported %s of screen %s (%d bytes)", artifact.Filename, snap.ScreenID, len(artifact.Data))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func parseFormats(list string) ([]export.Format, error) {
	if strings.TrimSpace(list) == "" {
		return defaultBundle, nil
	}
	var formats []export.Format
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
