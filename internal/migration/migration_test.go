package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementsAreIdempotent(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.1.0", r.Version())

	stmts := r.Statements()
	assert.Len(t, stmts, 6)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS analysis_runs")
	assert.Contains(t, stmts[1], "IF NOT EXISTS")
	for _, stmt := range stmts[2:] {
		assert.True(t, strings.HasPrefix(stmt, "CREATE INDEX IF NOT EXISTS"), stmt)
	}
}
