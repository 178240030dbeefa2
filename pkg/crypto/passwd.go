package crypto

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

var (
	ErrPasswordLength  = errors.New("password length must be 8-16")
	ErrPasswordCharset = errors.New("password must not contain spaces or chinese characters")
	ErrPasswordWeak    = errors.New("password must combine at least two of digits, letters and symbols")
)

// HashPassword bcrypt，结果 60 字节
func HashPassword(pwd string) (string, error) {
	bs, err := bcrypt.GenerateFromPassword([]byte(pwd), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// ValidatePasswordStrength 8-16 位，不含空白与中文，数字/字母/符号至少两类
func ValidatePasswordStrength(pwd string) error {
	if n := utf8.RuneCountInString(pwd); n < 8 || n > 16 {
		return ErrPasswordLength
	}
	var digit, letter, symbol bool
	for _, r := range pwd {
		switch {
		case unicode.IsSpace(r) || unicode.Is(unicode.Han, r):
			return ErrPasswordCharset
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		default:
			symbol = true
		}
	}
	kinds := 0
	for _, ok := range []bool{digit, letter, symbol} {
		if ok {
			kinds++
		}
	}
	if kinds < 2 {
		return ErrPasswordWeak
	}
	return nil
}
