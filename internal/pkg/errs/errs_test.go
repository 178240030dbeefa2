package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := Conflict("path", "path %q already exists", "/system")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "path", FieldOf(err))
	assert.Equal(t, `path "/system" already exists`, err.Error())
}

func TestWrappedKindSurvives(t *testing.T) {
	inner := NotFound("role id=%d not found", 7)
	outer := fmt.Errorf("update user: %w", inner)
	assert.True(t, errors.Is(outer, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(outer))
}

func TestForeignErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "", FieldOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Wrap(KindUnauthorized, cause, "token store unavailable")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, Wrap(KindConflict, nil, "x"))
}
