package utils

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"unicode"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomAlphaNumeric(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			slog.Error("failed to generate random number", "error", err)
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = charset[randomIndex.Int64()]
	}

	return string(result), nil
}

// GeneratePassword returns a random alphanumeric password that contains at
// least one upper-case letter, one lower-case letter and one digit.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		return "", fmt.Errorf("password length must be at least 8")
	}

	for {
		candidate, err := GenerateRandomAlphaNumeric(length)
		if err != nil {
			return "", err
		}
		var upper, lower, digit bool
		for _, r := range candidate {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		if upper && lower && digit {
			return candidate, nil
		}
	}
}
