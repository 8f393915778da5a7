package auth

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordProblems(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected []string
	}{
		{
			name:     "valid strong password",
			password: "Abcdefg1!",
			expected: []string{},
		},
		{
			name:     "missing uppercase and special",
			password: "abcdefg1",
			expected: []string{MsgPasswordNoUpper, MsgPasswordNoSpecial},
		},
		{
			name:     "too short",
			password: "Ab1!",
			expected: []string{MsgPasswordTooShort},
		},
		{
			name:     "missing lowercase",
			password: "SECUREPASS@123",
			expected: []string{MsgPasswordNoLower},
		},
		{
			name:     "missing digit",
			password: "SecurePass@xyz",
			expected: []string{MsgPasswordNoDigit},
		},
		{
			name:     "special outside the allowed set",
			password: "SecurePass123?",
			expected: []string{MsgPasswordNoSpecial},
		},
		{
			name:     "empty password fails every criterion",
			password: "",
			expected: []string{
				MsgPasswordTooShort,
				MsgPasswordNoUpper,
				MsgPasswordNoLower,
				MsgPasswordNoDigit,
				MsgPasswordNoSpecial,
			},
		},
		{
			name:     "short password counted in characters not bytes",
			password: "Aa1!éé",
			expected: []string{MsgPasswordTooShort},
		},
		{
			name:     "multibyte password long enough in characters",
			password: "Aa1!éééé",
			expected: []string{},
		},
		{
			name:     "exactly 72 bytes",
			password: "Aa1!" + strings.Repeat("x", 68),
			expected: []string{},
		},
		{
			name:     "over 72 bytes in ASCII",
			password: "Aa1!" + strings.Repeat("x", 69),
			expected: []string{MsgPasswordTooLong},
		},
		{
			name:     "under 72 characters but over 72 bytes",
			password: "Aa1!" + strings.Repeat("é", 40),
			expected: []string{MsgPasswordTooLong},
		},
		{
			name:     "every special character is accepted",
			password: "Passw0rd^&*",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PasswordProblems(tt.password)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("PasswordProblems(%q) = %v, want %v", tt.password, got, tt.expected)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	password := "SecureP@ss123"

	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if hash == "" {
		t.Error("hash should not be empty")
	}

	if hash == password {
		t.Error("hash should not equal plaintext password")
	}

	if err := ComparePassword(hash, password); err != nil {
		t.Errorf("ComparePassword with correct password failed: %v", err)
	}

	if err := ComparePassword(hash, "WrongPassword123!"); err == nil {
		t.Error("ComparePassword with wrong password should fail")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestHashPassword_AcceptsEveryValidPassword(t *testing.T) {
	passwords := []string{
		"Aa1!" + strings.Repeat("x", 68),
		"Aa1!" + strings.Repeat("\u00e9", 34),
	}
	for _, password := range passwords {
		if problems := PasswordProblems(password); len(problems) != 0 {
			t.Fatalf("PasswordProblems(%q) = %v, want none", password, problems)
		}
		if _, err := HashPasswordWithCost(password, bcrypt.MinCost); err != nil {
			t.Errorf("HashPasswordWithCost(%d bytes) failed: %v", len(password), err)
		}
	}
}
