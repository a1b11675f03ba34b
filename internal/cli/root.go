package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wakeupnow/wakeup/internal/cli/commands"
	"github.com/wakeupnow/wakeup/internal/logger"
)

var version = "dev" // Will be set during build

// Execute wires the application together and runs the root command
func Execute() error {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	log := logger.Component("cli")

	app, err := commands.NewApp(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer app.Close()

	rootCmd := newRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wakeup",
		Short: "Wake Up Now - Video courses for a better routine",
		Long: `Wake Up Now CLI - Browse, watch and manage video courses.

Sign in with email or a social provider, explore the catalog by theme,
subscribe to a plan and unlock member content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wakeup version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewVideosCmd(app))
	rootCmd.AddCommand(commands.NewWatchCmd(app))
	rootCmd.AddCommand(commands.NewUploadCmd(app))
	rootCmd.AddCommand(commands.NewPlansCmd(app))
	rootCmd.AddCommand(commands.NewCheckoutCmd(app))

	return rootCmd
}
