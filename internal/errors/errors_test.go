package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"rejected", ComputeRejected("feature X not numeric"), "feature X not numeric"},
		{"wrapped rejection", fmt.Errorf("run: %w", ComputeRejected("bad input")), "bad input"},
		{"malformed", MalformedResponse("compute", stderrors.New("eof")), "malformed response from compute service"},
		{"unreachable", ExternalServiceError("compute", stderrors.New("connection refused")), "compute service unreachable: connection refused"},
		{"plain", stderrors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(ComputeRejected("nope"), "run failed")
	assert.Equal(t, CodeComputeRejected, GetCode(err))
	assert.Equal(t, "run failed: nope", err.Error())

	err = Wrap(stderrors.New("disk"), "save")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "x"))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("x")))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("export: %w", ExportFailed("pdf", stderrors.New("503")))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeExportFailed, GetCode(err))
}
