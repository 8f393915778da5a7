package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8  // characters
	MaxPasswordLen = 72 // bytes; bcrypt rejects longer input

	// SpecialCharacters is the set a password must draw at least one character from.
	SpecialCharacters = "!@#$%^&*"
)

// Password strength messages, in evaluation order.
const (
	MsgPasswordTooShort  = "Password must be at least 8 characters"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
	MsgPasswordNoUpper   = "Password must contain an uppercase letter"
	MsgPasswordNoLower   = "Password must contain a lowercase letter"
	MsgPasswordNoDigit   = "Password must contain a number"
	MsgPasswordNoSpecial = "Password must contain a special character"
)

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, BcryptCost)
}

// HashPasswordWithCost hashes with an explicit bcrypt cost. Tests use bcrypt.MinCost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// PasswordProblems lists every unmet strength criterion. Length is counted in
// characters for the minimum and in bytes for the bcrypt maximum. Only ASCII
// letters and digits count toward the letter and number classes.
func PasswordProblems(password string) []string {
	problems := make([]string, 0)

	if utf8.RuneCountInString(password) < MinPasswordLen {
		problems = append(problems, MsgPasswordTooShort)
	}
	if len(password) > MaxPasswordLen {
		problems = append(problems, MsgPasswordTooLong)
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case r <= unicode.MaxASCII && unicode.IsUpper(r):
			hasUpper = true
		case r <= unicode.MaxASCII && unicode.IsLower(r):
			hasLower = true
		case r <= unicode.MaxASCII && unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(SpecialCharacters, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		problems = append(problems, MsgPasswordNoUpper)
	}
	if !hasLower {
		problems = append(problems, MsgPasswordNoLower)
	}
	if !hasDigit {
		problems = append(problems, MsgPasswordNoDigit)
	}
	if !hasSpecial {
		problems = append(problems, MsgPasswordNoSpecial)
	}

	return problems
}
