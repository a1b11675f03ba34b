package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(app)
		},
	}
}

func runLogout(app *App) error {
	snap := app.Sessions.Current()
	if !snap.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	// Tell the backend, best effort. The local session clears no matter
	// what happens on the wire.
	if err := app.Client.Logout(snap.Token); err != nil {
		app.Logger.Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
	}

	app.ForceLogout()

	fmt.Println("✓ Logged out.")
	return nil
}
