package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"code only", errFactory.New(errors.ErrInvalidInterval), "Invalid interval value"},
		{"unknown code", errFactory.New(errors.ErrorCode("something_else")), "something_else"},
		{"wrapped", errFactory.Wrap(errors.ErrReadConfig, stderrors.New("boom")), "Failed to read config file: boom"},
		{"data", errFactory.WithData(errors.ErrInvalidTimeout, "-1s"), "Invalid timeout value: -1s"},
		{"message", errFactory.WithMessage(errors.ErrInvalidArgument, "custom"), "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCodeOf(t *testing.T) {
	errFactory := errors.New()
	inner := errFactory.New(errors.ErrCanceled)
	outer := errFactory.Wrap(errors.ErrProbeFailed, inner)

	assert.Equal(t, errors.ErrProbeFailed, errors.CodeOf(outer))
	assert.Equal(t, errors.ErrCanceled, errors.CodeOf(fmt.Errorf("context: %w", inner)))
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(stderrors.New("plain")))
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(nil))

	assert.True(t, errors.HasCode(outer, errors.ErrCanceled))
	assert.True(t, errors.HasCode(outer, errors.ErrProbeFailed))
	assert.False(t, errors.HasCode(outer, errors.ErrInitApp))
}

func TestWithDataKeepsCause(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := errors.New().Wrap(errors.ErrInitFailed, cause).WithData("http://x")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "http://x", err.GetData())
	assert.Equal(t, "Initialization failed: http://x: dial tcp: refused", err.Error())
}
