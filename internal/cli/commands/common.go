package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/wakeupnow/wakeup/internal/api"
	"github.com/wakeupnow/wakeup/internal/forms"
)

// readPassword prompts for a password without echoing it
func readPassword(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use the flag or env var)")
	}

	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// printFieldErrors renders validation errors inline, one per field
func printFieldErrors(errs []forms.FieldError) {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Field, e.Message)
	}
}

// sessionExpired reports whether an API error means the token went stale.
// The caller must force a local logout when this returns true.
func sessionExpired(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}

// networkHint wraps connectivity failures with a retry suggestion instead
// of surfacing a raw transport error.
func networkHint(err error) error {
	return fmt.Errorf("%w\nCheck your connection and try again", err)
}
