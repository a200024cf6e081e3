package excel

// Config holds limits for uploaded tables
type Config struct {
	// Sheet to read from workbooks; empty means the first sheet
	Sheet   string `json:"sheet"`
	MaxRows int    `json:"max_rows"`
}

// DefaultConfig returns sensible defaults for uploads
func DefaultConfig() Config {
	return Config{MaxRows: 100000}
}
