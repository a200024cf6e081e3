package ports

import "context"

// DocumentRenderer converts an export package, encoded as JSON, into a
// document format produced outside this process (pdf, docx).
type DocumentRenderer interface {
	Render(ctx context.Context, format string, pkg []byte) ([]byte, error)
}
