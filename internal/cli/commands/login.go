package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wakeupnow/wakeup/internal/api"
	"github.com/wakeupnow/wakeup/internal/bus"
	"github.com/wakeupnow/wakeup/internal/cli/userconfig"
	"github.com/wakeupnow/wakeup/internal/forms"
	"github.com/wakeupnow/wakeup/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string
	var googleCredential, appleIdentityToken, appleAuthCode string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Wake Up Now backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if googleCredential != "" {
				return runGoogleLogin(app, googleCredential)
			}
			if appleIdentityToken != "" {
				return runAppleLogin(app, appleIdentityToken, appleAuthCode)
			}
			return runLogin(app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set WAKEUP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set WAKEUP_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&googleCredential, "google-credential", "", "Google identity credential (sign in with Google)")
	cmd.Flags().StringVar(&appleIdentityToken, "apple-identity-token", "", "Apple identity token (sign in with Apple)")
	cmd.Flags().StringVar(&appleAuthCode, "apple-auth-code", "", "Apple authorization code")

	return cmd
}

func runLogin(app *App, email, password string) error {
	// Check for environment variables (useful for scripting)
	if email == "" {
		email = os.Getenv("WAKEUP_EMAIL")
	}
	if password == "" {
		password = os.Getenv("WAKEUP_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or WAKEUP_EMAIL env var)")
	}

	if password == "" {
		var err error
		password, err = readPassword("Password: ")
		if err != nil {
			return err
		}
	}

	// Validation failures never reach the network
	form := forms.LoginForm{Email: email, Password: password}
	if errs := form.Validate(); len(errs) > 0 {
		printFieldErrors(errs)
		return fmt.Errorf("login aborted: fix the fields above")
	}

	loginResp, err := app.Client.Login(email, password)
	if err != nil {
		if errors.Is(err, api.ErrUnknownUser) {
			// No account for this email: hand the user over to registration
			// with the attempted email pre-filled
			if err := userconfig.SetPrefill("", email); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to store registration prefill")
			}
			app.Events.Send(bus.Message{
				Kind:    bus.KindPrefillRegistration,
				Prefill: bus.Prefill{Email: email},
			})
			fmt.Printf("No account found for %s.\n", email)
			fmt.Println("Run 'wakeup register' to create one — your email is already filled in.")
			return nil
		}
		if errors.Is(err, api.ErrInvalidCredentials) {
			return fmt.Errorf("email or password is incorrect")
		}
		return networkHint(err)
	}

	return establishSession(app, loginResp.User, loginResp.Token)
}

func runGoogleLogin(app *App, credential string) error {
	authResp, err := app.Client.GoogleSignIn(credential)
	if err != nil {
		return networkHint(err)
	}
	return finishSocialLogin(app, authResp)
}

func runAppleLogin(app *App, identityToken, authCode string) error {
	authResp, err := app.Client.AppleSignIn(api.AppleSignInRequest{
		IdentityToken: identityToken,
		AuthCode:      authCode,
	})
	if err != nil {
		return networkHint(err)
	}
	return finishSocialLogin(app, authResp)
}

func finishSocialLogin(app *App, authResp *api.SocialAuthResponse) error {
	if authResp.IsNewUser {
		// Provider identity checked out but no account exists yet
		if err := userconfig.SetPrefill(authResp.UserData.Name, authResp.UserData.Email); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to store registration prefill")
		}
		app.Events.Send(bus.Message{
			Kind:    bus.KindPrefillRegistration,
			Prefill: bus.Prefill{Name: authResp.UserData.Name, Email: authResp.UserData.Email},
		})
		fmt.Printf("Welcome, %s! You don't have an account yet.\n", authResp.UserData.Name)
		fmt.Println("Run 'wakeup register' to finish signing up — your details are already filled in.")
		return nil
	}

	return establishSession(app, authResp.User, authResp.Token)
}

func establishSession(app *App, user session.User, token string) error {
	app.Events.Send(bus.Message{Kind: bus.KindLoginSucceeded, User: user, Token: token})

	snap := app.Sessions.Current()
	if !snap.IsAuthenticated {
		return fmt.Errorf("failed to save authentication state")
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", snap.User.Name, snap.User.Email)
	if snap.User.IsAdmin() {
		fmt.Println("  Role: Admin")
	}

	return nil
}
