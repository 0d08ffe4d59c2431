package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("classified errors survive wrapping", func(t *testing.T) {
		err := fmt.Errorf("load profile: %w", NotFound("Profile not found"))
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("disk full")))
		assert.False(t, IsKind(nil, KindInternal))
	})

	t.Run("sentinel identity is preserved", func(t *testing.T) {
		sentinel := NotFound("There is no profile for this user")
		err := fmt.Errorf("wrap: %w", sentinel)
		assert.ErrorIs(t, err, sentinel)
	})
}

func TestValidator(t *testing.T) {
	t.Run("no rules failed", func(t *testing.T) {
		var v Validator
		v.Required("status", "Developer", "Status is required")
		v.Check(true, "email", "a@b.c", "Please include a valid email")
		assert.NoError(t, v.Err())
	})

	t.Run("collects failures in order", func(t *testing.T) {
		var v Validator
		v.Required("status", "  ", "Status is required")
		v.Required("skills", "", "Skills is required")

		err := v.Err()
		require.Error(t, err)

		var appErr *Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindValidation, appErr.Kind)
		require.Len(t, appErr.Fields, 2)
		assert.Equal(t, "Status is required", appErr.Fields[0].Msg)
		assert.Equal(t, "status", appErr.Fields[0].Param)
		assert.Equal(t, "body", appErr.Fields[0].Location)
		assert.Equal(t, "Skills is required", appErr.Fields[1].Msg)
		assert.Equal(t, "Status is required; Skills is required", err.Error())
	})
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindInternal, Msg: "save profile", Err: errors.New("locked")}
	assert.Equal(t, "save profile: locked", err.Error())
	assert.Equal(t, "INVALID_IDENTIFIER", KindInvalidIdentifier.String())
}
