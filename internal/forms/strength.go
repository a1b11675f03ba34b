package forms

import "unicode"

// Strength is the coarse password strength bucket shown next to the field
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// PasswordStrength scores a password on four criteria: length of at least
// 8, an uppercase letter, a digit and a symbol. All four is strong, two or
// three is medium, fewer is weak.
func PasswordStrength(password string) Strength {
	if password == "" {
		return StrengthWeak
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}

	score := 0
	if len(password) >= 8 {
		score++
	}
	if hasUpper {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSymbol {
		score++
	}

	switch {
	case score >= 4:
		return StrengthStrong
	case score >= 2:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}
