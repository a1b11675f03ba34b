package forms

import (
	"strconv"
	"strings"
	"time"
)

// CardForm is the credit card payment form state
type CardForm struct {
	Number string // may carry the display mask
	Holder string
	Expiry string // MM/YY
	CVV    string
}

// Validate returns the field-level errors of the card form.
// The reference time is injected so expiry checks are deterministic.
func (f CardForm) Validate(now time.Time) []FieldError {
	var errs []FieldError

	number := digitsOnly(f.Number)
	if number == "" {
		errs = append(errs, FieldError{"number", "card number is required"})
	} else if len(number) < 13 || len(number) > 19 || !luhnValid(number) {
		errs = append(errs, FieldError{"number", "card number is invalid"})
	}

	if strings.TrimSpace(f.Holder) == "" {
		errs = append(errs, FieldError{"holder", "cardholder name is required"})
	}

	if month, year, ok := parseExpiry(f.Expiry); !ok {
		errs = append(errs, FieldError{"expiry", "expiry must be MM/YY"})
	} else {
		endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
		if !endOfMonth.After(now) {
			errs = append(errs, FieldError{"expiry", "card is expired"})
		}
	}

	cvv := digitsOnly(f.CVV)
	if len(cvv) < 3 || len(cvv) > 4 || cvv != f.CVV {
		errs = append(errs, FieldError{"cvv", "cvv must have 3 or 4 digits"})
	}

	return errs
}

// luhnValid runs the Luhn checksum over a digit string
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// parseExpiry parses MM/YY into month and a four-digit year
func parseExpiry(expiry string) (month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}

	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}

	return month, 2000 + yy, true
}

// FormatCardNumber applies the display mask, digits in groups of four
func FormatCardNumber(number string) string {
	digits := digitsOnly(number)
	if len(digits) > 19 {
		digits = digits[:19]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
