package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "precondition", err: NewPreconditionError("reply token is empty"), code: CodePrecondition, status: http.StatusInternalServerError},
		{name: "upstream", err: NewUpstreamError("reply message", cause), code: CodeUpstreamFailed, status: http.StatusBadGateway},
		{name: "wrapped upstream", err: fmt.Errorf("handle: %w", NewUpstreamError("get profile", cause)), code: CodeUpstreamFailed, status: http.StatusBadGateway},
		{name: "no rows", err: pgx.ErrNoRows, code: CodeNotFound, status: http.StatusNotFound},
		{name: "plain", err: cause, code: CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	t.Parallel()
	cause := errors.New("401 unauthorized")
	err := NewUpstreamError("reply message", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "reply message failed: 401 unauthorized", err.Error())
}

func TestTranscodeError(t *testing.T) {
	t.Parallel()
	err := NewTranscodeError(1, nil)

	assert.True(t, IsCode(err, CodeTranscode))
	assert.Equal(t, "transcode exited with status 1", err.Error())
}
