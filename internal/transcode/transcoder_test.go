package transcode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

type fakeRunner struct {
	code int
	err  error
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	f.name = name
	f.args = args
	return f.code, f.err
}

func TestPreviewArguments(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	tr := NewTranscoder(runner, "", 0, nil)

	require.NoError(t, tr.Preview(context.Background(), "/tmp/in.jpg", "/tmp/out.jpg"))
	assert.Equal(t, "convert", runner.name)
	assert.Equal(t, []string{"-resize", "240x", "/tmp/in.jpg", "/tmp/out.jpg"}, runner.args)
}

func TestPreviewFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		err  error
	}{
		{name: "non-zero exit", code: 1, err: errors.New("convert: no decode delegate")},
		{name: "non-zero exit without error", code: 2},
		{name: "missing binary", code: -1, err: errors.New("start convert: executable file not found")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := NewTranscoder(&fakeRunner{code: tt.code, err: tt.err}, "magick", 120, nil)
			err := tr.Preview(context.Background(), "a", "b")
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeTranscode))
		})
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	t.Parallel()
	code, err := ExecRunner{}.Run(context.Background(), "line-menu-bot-no-such-binary")
	assert.Equal(t, -1, code)
	assert.Error(t, err)
}
