package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.Sessions.Current()
			if !snap.IsAuthenticated {
				fmt.Println("Not logged in.")
				return nil
			}

			fmt.Printf("%s <%s>\n", snap.User.Name, snap.User.Email)
			fmt.Printf("Role: %s\n", snap.User.Role)
			return nil
		},
	}
}
