package ui

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"statflow/adapters/excel"
	"statflow/domain/core"
	"statflow/domain/dataset"
)

// readSample accepts either a multipart upload in field "file" or a JSON
// body {columns, rows} whose rows are arrays or objects
func (s *Server) readSample(c *gin.Context) (*dataset.Sample, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, s.uploadError(err)
		}
		format, err := excel.FormatFromName(header.Filename)
		if err != nil {
			return nil, err
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidSample, err)
		}
		defer f.Close()
		s.log.Debug("reading %s upload %q (%d bytes)", format, header.Filename, header.Size)
		return s.reader.Read(f, format)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, s.uploadError(err)
	}
	return decodeSample(body)
}

func (s *Server) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: upload exceeds %d bytes", core.ErrInvalidSample, s.maxBody)
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidSample, err)
}

// decodeSample parses a JSON table. Numbers keep their literal text so no
// precision is lost before the compute service parses them.
func decodeSample(body []byte) (*dataset.Sample, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", core.ErrInvalidSample)
	}
	doc := gjson.ParseBytes(body)

	var columns []string
	for _, col := range doc.Get("columns").Array() {
		columns = append(columns, col.String())
	}

	rowsField := doc.Get("rows")
	if !rowsField.IsArray() {
		return nil, fmt.Errorf("%w: rows must be an array", core.ErrInvalidSample)
	}
	raw := rowsField.Array()
	if len(columns) == 0 && len(raw) > 0 && raw[0].IsObject() {
		raw[0].ForEach(func(key, _ gjson.Result) bool {
			columns = append(columns, key.String())
			return true
		})
	}

	rows := make([]dataset.Row, 0, len(raw))
	for i, r := range raw {
		row := make(dataset.Row, len(columns))
		switch {
		case r.IsArray():
			cells := r.Array()
			if len(cells) > len(columns) {
				return nil, fmt.Errorf("%w: row %d has %d cells for %d columns", core.ErrInvalidSample, i+1, len(cells), len(columns))
			}
			for j, cell := range cells {
				row[columns[j]] = cellText(cell)
			}
		case r.IsObject():
			r.ForEach(func(key, cell gjson.Result) bool {
				row[key.String()] = cellText(cell)
				return true
			})
		default:
			return nil, fmt.Errorf("%w: row %d is neither an array nor an object", core.ErrInvalidSample, i+1)
		}
		rows = append(rows, row)
	}
	return dataset.NewSample(columns, rows)
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return v.Raw
	case gjson.String:
		return v.Str
	default:
		return v.String()
	}
}
