package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wakeupnow/wakeup/internal/api"
	"github.com/wakeupnow/wakeup/internal/bus"
	"github.com/wakeupnow/wakeup/internal/cli/userconfig"
	"github.com/wakeupnow/wakeup/internal/forms"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var firstName, lastName, email, cpf, password string
	var acceptTerms bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Wake Up Now account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(app, registerInput{
				firstName:   firstName,
				lastName:    lastName,
				email:       email,
				cpf:         cpf,
				password:    password,
				acceptTerms: acceptTerms,
			})
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF (with or without formatting)")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().BoolVar(&acceptTerms, "accept-terms", false, "Accept the terms of use")

	return cmd
}

type registerInput struct {
	firstName, lastName, email, cpf, password string
	acceptTerms                               bool
}

func runRegister(app *App, in registerInput) error {
	// A failed login or social sign-in may have left prefill data behind
	if in.email == "" || in.firstName == "" {
		prefillName, prefillEmail, err := userconfig.TakePrefill()
		if err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to load registration prefill")
		}
		if in.email == "" && prefillEmail != "" {
			in.email = prefillEmail
			fmt.Printf("Using pre-filled email: %s\n", in.email)
		}
		if in.firstName == "" && prefillName != "" {
			parts := strings.SplitN(prefillName, " ", 2)
			in.firstName = parts[0]
			if len(parts) > 1 && in.lastName == "" {
				in.lastName = parts[1]
			}
		}
	}

	if in.password == "" {
		var err error
		in.password, err = readPassword("Password: ")
		if err != nil {
			return err
		}
		fmt.Printf("  Password strength: %s\n", forms.PasswordStrength(in.password))

		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != in.password {
			return fmt.Errorf("passwords do not match")
		}
	}

	form := forms.RegisterForm{
		FirstName:       in.firstName,
		LastName:        in.lastName,
		Email:           in.email,
		CPF:             in.cpf,
		Password:        in.password,
		ConfirmPassword: in.password,
		TermsAccepted:   in.acceptTerms,
	}
	if errs := form.Validate(); len(errs) > 0 {
		printFieldErrors(errs)
		return fmt.Errorf("registration aborted: fix the fields above")
	}

	_, err := app.Client.Register(api.RegisterRequest{
		Name:     form.FullName(),
		Email:    strings.TrimSpace(in.email),
		CPF:      forms.FormatCPF(in.cpf),
		Password: in.password,
	})
	if err != nil {
		if errors.Is(err, api.ErrEmailExists) {
			return fmt.Errorf("an account with %s already exists, try 'wakeup login'", in.email)
		}
		if errors.Is(err, api.ErrValidation) {
			return err
		}
		return networkHint(err)
	}

	app.Events.Send(bus.Message{Kind: bus.KindRegistrationSucceeded})

	fmt.Println("✓ Account created!")
	fmt.Println("Run 'wakeup login' to sign in.")
	return nil
}
