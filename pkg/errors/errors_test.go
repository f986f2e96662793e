package errors_test

import (
	"fmt"
	"testing"

	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("without_wrapped_error", func(t *testing.T) {
		err := errors.New(errors.ErrConfigLoad, "cannot read config")
		assert.Equal(t, "[CONFIG_LOAD] cannot read config", err.Error())
	})

	t.Run("with_wrapped_error", func(t *testing.T) {
		inner := fmt.Errorf("permission denied")
		err := errors.Wrap(inner, errors.ErrConfigLoad, "cannot read config")
		assert.Equal(t, "[CONFIG_LOAD] cannot read config: permission denied", err.Error())
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("newf_formats_message", func(t *testing.T) {
		err := errors.Newf(errors.ErrAliasUnresolved, "alias '%s' does not exist in profile '%s'", "pager", "work")
		assert.Contains(t, err.Error(), "alias 'pager' does not exist in profile 'work'")
	})
}

func TestErrorCodes(t *testing.T) {
	t.Run("is_error_code", func(t *testing.T) {
		err := errors.New(errors.ErrNoMatch, "no match for input")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoMatch))
		assert.False(t, errors.IsErrorCode(err, errors.ErrExecFailed))
	})

	t.Run("code_survives_wrapping", func(t *testing.T) {
		inner := errors.New(errors.ErrExecFailed, "exit status 1")
		outer := fmt.Errorf("dispatching 'a.txt': %w", inner)
		assert.True(t, errors.IsErrorCode(outer, errors.ErrExecFailed))
		assert.Equal(t, errors.ErrExecFailed, errors.GetErrorCode(outer))
	})

	t.Run("non_rrr_error_is_unknown", func(t *testing.T) {
		assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
	})
}

func TestWrapNil(t *testing.T) {
	require.Nil(t, errors.Wrap(nil, errors.ErrInternal, "should be nil"))
	require.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "should be %s", "nil"))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrPatternCompile, "bad pattern").
		WithDetail("pattern", "[unclosed").
		WithDetail("profile", "default")
	assert.Equal(t, "[unclosed", err.Details["pattern"])
	assert.Equal(t, "default", err.Details["profile"])
}
