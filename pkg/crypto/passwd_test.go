package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h, err := HashPassword("Admin@123")
	require.NoError(t, err)
	assert.Len(t, h, 60)
	assert.True(t, VerifyPassword("Admin@123", h))
	assert.False(t, VerifyPassword("admin@123", h))
	assert.False(t, VerifyPassword("Admin@123", "not-a-hash"))
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		pwd  string
		want error
	}{
		{"abc12345", nil},
		{"abc!@#xyz", nil},
		{"1234!@#$", nil},
		{"short1", ErrPasswordLength},
		{"abcdefgh12345678x", ErrPasswordLength},
		{"abc 12345", ErrPasswordCharset},
		{"密码abc12345", ErrPasswordCharset},
		{"abcdefgh", ErrPasswordWeak},
		{"12345678", ErrPasswordWeak},
	}
	for _, c := range cases {
		t.Run(c.pwd, func(t *testing.T) {
			assert.ErrorIs(t, ValidatePasswordStrength(c.pwd), c.want)
		})
	}
}
