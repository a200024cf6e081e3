package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"statflow/domain/core"
	"statflow/internal"
	apperrors "statflow/internal/errors"
	"statflow/ports"
)

// Artifact is one exported file
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}

// Recorder receives export measurements
type Recorder interface {
	ExportFinished(format string, err error, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ExportFinished(string, error, time.Duration) {}

// Options wires the optional exporters. Without a Renderer pdf and docx are
// unavailable; without a Capturer png is.
type Options struct {
	Renderer ports.DocumentRenderer
	Capturer Capturer
	Metrics  Recorder
	Logger   *internal.Logger
	// Parallel bounds concurrent exporters in a bundle
	Parallel int
}

// Service produces export artifacts from packages
type Service struct {
	renderer ports.DocumentRenderer
	capturer Capturer
	metrics  Recorder
	log      *internal.Logger
	parallel int
}

// NewService creates an export service
func NewService(opts Options) *Service {
	s := &Service{
		renderer: opts.Renderer,
		capturer: opts.Capturer,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		parallel: opts.Parallel,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.log == nil {
		s.log = internal.DefaultLogger
	}
	s.log = s.log.With("Export")
	if s.parallel <= 0 {
		s.parallel = 4
	}
	return s
}

// Formats lists the formats this service can produce
func (s *Service) Formats() []Format {
	out := []Format{FormatXLSX, FormatHTML, FormatMarkdown, FormatJSON}
	if s.capturer != nil {
		out = append(out, FormatPNG)
	}
	if s.renderer != nil {
		out = append(out, FormatPDF, FormatDOCX)
	}
	return out
}

// Supports reports whether format is available
func (s *Service) Supports(format Format) bool {
	for _, f := range s.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Export renders pkg in one format
func (s *Service) Export(ctx context.Context, pkg Package, format Format) (Artifact, error) {
	if !s.Supports(format) {
		return Artifact{}, fmt.Errorf("%w: %q is not enabled", core.ErrUnsupportedFormat, format)
	}
	start := time.Now()
	data, err := s.render(ctx, pkg, format)
	s.metrics.ExportFinished(string(format), err, time.Since(start))
	if err != nil {
		s.log.Warn("%s export of %s failed: %v", format, pkg.ID, err)
		if !apperrors.IsAppError(err) {
			err = apperrors.ExportFailed(string(format), err)
		}
		return Artifact{}, err
	}
	s.log.Debug("%s export of %s: %d bytes in %v", format, pkg.ID, len(data), time.Since(start))
	return Artifact{
		Format:      format,
		Filename:    pkg.Filename(format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func (s *Service) render(ctx context.Context, pkg Package, format Format) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return Workbook(pkg)
	case FormatHTML:
		return HTML(pkg), nil
	case FormatMarkdown:
		return Markdown(pkg, false), nil
	case FormatJSON:
		return json.MarshalIndent(pkg, "", "  ")
	case FormatPNG:
		return s.capturer.Capture(ctx, HTML(pkg))
	case FormatPDF, FormatDOCX:
		body, err := json.Marshal(pkg)
		if err != nil {
			return nil, err
		}
		return s.renderer.Render(ctx, string(format), body)
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
}

// Bundle exports several formats concurrently and zips them in the order
// requested. Any failing format fails the bundle.
func (s *Service) Bundle(ctx context.Context, pkg Package, formats []Format) (Artifact, error) {
	if len(formats) == 0 {
		return Artifact{}, fmt.Errorf("%w: no formats requested", core.ErrUnsupportedFormat)
	}
	seen := make(map[Format]bool, len(formats))
	unique := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}

	artifacts := make([]Artifact, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, format := range unique {
		i, format := i, format
		g.Go(func() error {
			a, err := s.Export(gctx, pkg, format)
			if err != nil {
				return err
			}
			artifacts[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, a := range artifacts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: a.Filename, Method: zip.Deflate, Modified: pkg.GeneratedAt})
		if err != nil {
			return Artifact{}, err
		}
		if _, err := w.Write(a.Data); err != nil {
			return Artifact{}, err
		}
	}
	if err := zw.Close(); err != nil {
		return Artifact{}, err
	}
	name := pkg.Filename(FormatJSON)
	return Artifact{
		Filename:    name[:len(name)-len(".json")] + ".zip",
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

// IsUnavailable reports errors caused by a format that is not enabled
func IsUnavailable(err error) bool {
	return errors.Is(err, core.ErrUnsupportedFormat)
}
