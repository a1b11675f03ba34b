package forms

import "strings"

// digitsOnly strips everything but 0-9
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF validates a Brazilian CPF: 11 digits and matching check digits.
// Accepts formatted ("529.982.247-25") or raw ("52998224725") input.
func ValidCPF(cpf string) bool {
	digits := digitsOnly(cpf)
	if len(digits) != 11 {
		return false
	}

	// Sequences like 00000000000 pass the checksum but are not valid CPFs
	allSame := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return cpfCheckDigit(digits, 9) == int(digits[9]-'0') &&
		cpfCheckDigit(digits, 10) == int(digits[10]-'0')
}

// cpfCheckDigit computes the check digit over the first n digits
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// FormatCPF applies the display mask 000.000.000-00 to raw input.
// Partial input is masked as far as it goes.
func FormatCPF(cpf string) string {
	digits := digitsOnly(cpf)
	if len(digits) > 11 {
		digits = digits[:11]
	}

	var b strings.Builder
	for i, r := range digits {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
