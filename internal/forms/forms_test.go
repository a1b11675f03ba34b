package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fieldNames(errs []FieldError) []string {
	if len(errs) == 0 {
		return nil
	}
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

func TestLoginFormValidation(t *testing.T) {
	cases := []struct {
		name   string
		form   LoginForm
		fields []string
	}{
		{"valid", LoginForm{Email: "a@b.com", Password: "secret123"}, nil},
		{"missing email", LoginForm{Password: "secret123"}, []string{"email"}},
		{"bad email", LoginForm{Email: "not-an-email", Password: "secret123"}, []string{"email"}},
		{"missing password", LoginForm{Email: "a@b.com"}, []string{"password"}},
		{"short password", LoginForm{Email: "a@b.com", Password: "abc"}, []string{"password"}},
		{"everything wrong", LoginForm{}, []string{"email", "password"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.fields, fieldNames(tc.form.Validate()))
		})
	}
}

func validRegisterForm() RegisterForm {
	return RegisterForm{
		FirstName:       "Joao",
		LastName:        "Silva",
		Email:           "joao@example.com",
		CPF:             "529.982.247-25",
		Password:        "wakeup123",
		ConfirmPassword: "wakeup123",
		TermsAccepted:   true,
	}
}

func TestRegisterFormValidation(t *testing.T) {
	assert.Empty(t, validRegisterForm().Validate())

	t.Run("name required", func(t *testing.T) {
		f := validRegisterForm()
		f.LastName = ""
		assert.Equal(t, []string{"name"}, fieldNames(f.Validate()))
	})

	t.Run("cpf check digits enforced", func(t *testing.T) {
		f := validRegisterForm()
		f.CPF = "529.982.247-26"
		assert.Equal(t, []string{"cpf"}, fieldNames(f.Validate()))
	})

	t.Run("password minimum is eight", func(t *testing.T) {
		f := validRegisterForm()
		f.Password, f.ConfirmPassword = "abc1234", "abc1234"
		assert.Equal(t, []string{"password"}, fieldNames(f.Validate()))
	})

	t.Run("confirmation must match", func(t *testing.T) {
		f := validRegisterForm()
		f.ConfirmPassword = "different1"
		assert.Equal(t, []string{"confirm_password"}, fieldNames(f.Validate()))
	})

	t.Run("terms must be accepted", func(t *testing.T) {
		f := validRegisterForm()
		f.TermsAccepted = false
		assert.Equal(t, []string{"terms"}, fieldNames(f.Validate()))
	})
}

func TestFullName(t *testing.T) {
	f := RegisterForm{FirstName: "  Joao ", LastName: " Silva "}
	assert.Equal(t, "Joao Silva", f.FullName())
}

func TestValidCPF(t *testing.T) {
	cases := []struct {
		cpf   string
		valid bool
	}{
		{"52998224725", true},
		{"529.982.247-25", true},
		{"52998224726", false}, // wrong check digit
		{"5299822472", false},  // too short
		{"00000000000", false}, // repeated digits
		{"11111111111", false},
		{"", false},
		{"abc.def.ghi-jk", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidCPF(tc.cpf), "cpf %q", tc.cpf)
	}
}

func TestFormatCPF(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))
	assert.Equal(t, "529.98", FormatCPF("52998"))
	assert.Equal(t, "", FormatCPF(""))
	// Extra digits are cut at CPF length
	assert.Equal(t, "529.982.247-25", FormatCPF("529982247259999"))
}

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     Strength
	}{
		{"", StrengthWeak},
		{"abc", StrengthWeak},
		{"abcdefgh", StrengthWeak},       // length only
		{"abcdefg1", StrengthMedium},     // length + digit
		{"Abcdefg1", StrengthMedium},     // length + upper + digit
		{"Abcdef1!", StrengthStrong},     // all four
		{"A1!", StrengthMedium},          // short but varied
		{"Wakeup2024!", StrengthStrong},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, PasswordStrength(tc.password), "password %q", tc.password)
	}
}

func TestCardFormValidation(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	valid := CardForm{
		Number: "4532 0151 1283 0366", // passes Luhn
		Holder: "JOAO SILVA",
		Expiry: "11/27",
		CVV:    "123",
	}
	assert.Empty(t, valid.Validate(now))

	t.Run("luhn failure", func(t *testing.T) {
		f := valid
		f.Number = "4532 0151 1283 0367"
		assert.Equal(t, []string{"number"}, fieldNames(f.Validate(now)))
	})

	t.Run("expired card", func(t *testing.T) {
		f := valid
		f.Expiry = "01/25"
		assert.Equal(t, []string{"expiry"}, fieldNames(f.Validate(now)))
	})

	t.Run("current month still valid", func(t *testing.T) {
		f := valid
		f.Expiry = "03/26"
		assert.Empty(t, f.Validate(now))
	})

	t.Run("malformed expiry", func(t *testing.T) {
		f := valid
		f.Expiry = "2027-11"
		assert.Equal(t, []string{"expiry"}, fieldNames(f.Validate(now)))
	})

	t.Run("cvv length", func(t *testing.T) {
		f := valid
		f.CVV = "12"
		assert.Equal(t, []string{"cvv"}, fieldNames(f.Validate(now)))
	})
}

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "4532 0151 1283 0366", FormatCardNumber("4532015112830366"))
	assert.Equal(t, "4532 01", FormatCardNumber("453201"))
}
