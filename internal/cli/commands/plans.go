package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlansCmd creates the plans listing command
func NewPlansCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlans(app)
		},
	}
}

func runPlans(app *App) error {
	plans, err := app.Client.ListPlans()
	if err != nil {
		return networkHint(err)
	}

	for _, p := range plans {
		fmt.Printf("%s — R$ %.2f/month\n", p.Name, p.Price)
		for _, feature := range p.Features {
			fmt.Printf("  • %s\n", feature)
		}
		fmt.Println()
	}
	fmt.Println("Subscribe with 'wakeup checkout --plan <id>'.")

	return nil
}
