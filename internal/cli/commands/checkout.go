package commands

import (
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/wakeupnow/wakeup/internal/api"
	"github.com/wakeupnow/wakeup/internal/forms"
)

// NewCheckoutCmd creates the checkout command
func NewCheckoutCmd(app *App) *cobra.Command {
	var planID, method string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Subscribe to a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(app, planID, method)
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Plan ID (starter, pro, elite); prompts when omitted")
	cmd.Flags().StringVar(&method, "method", "", "Payment method (card, pix, boleto); prompts when omitted")

	return cmd
}

func runCheckout(app *App, planID, method string) error {
	if err := app.Navigate("checkout"); err != nil {
		return err
	}

	plans, err := app.Client.ListPlans()
	if err != nil {
		return networkHint(err)
	}

	if planID == "" {
		planID, err = promptPlan(plans)
		if err != nil {
			return err
		}
	} else if !knownPlan(plans, planID) {
		return fmt.Errorf("unknown plan %q, see 'wakeup plans'", planID)
	}

	if method == "" {
		method, err = promptMethod()
		if err != nil {
			return err
		}
	}

	// Method-specific details are validated locally before checkout
	switch method {
	case api.PaymentMethodCard:
		if err := collectCardDetails(); err != nil {
			return err
		}
	case api.PaymentMethodBoleto:
		if err := collectBoletoCPF(); err != nil {
			return err
		}
	case api.PaymentMethodPix:
		// Nothing to collect, the QR code comes back from checkout
	default:
		return fmt.Errorf("unknown payment method %q (card, pix or boleto)", method)
	}

	snap := app.Sessions.Current()
	checkoutResp, err := app.Client.Checkout(snap.Token, planID, method)
	if err != nil {
		if sessionExpired(err) {
			app.ForceLogout()
			return fmt.Errorf("your session expired, please run 'wakeup login' again")
		}
		return networkHint(err)
	}

	if !checkoutResp.Success {
		return fmt.Errorf("payment was not approved, no charge was made")
	}

	sub := checkoutResp.Subscription
	fmt.Println("✓ Subscription created!")
	fmt.Printf("  Plan: %s\n", sub.PlanID)
	fmt.Printf("  Status: %s\n", sub.Status)
	fmt.Printf("  Valid until: %s\n", sub.EndDate.Format("2006-01-02"))

	if checkoutResp.PixCode != "" {
		fmt.Printf("\nPIX copy-and-paste code:\n%s\n", checkoutResp.PixCode)
		fmt.Println("The subscription activates as soon as the payment is confirmed.")
	}
	if checkoutResp.BoletoLine != "" {
		fmt.Printf("\nBoleto digitable line:\n%s\n", checkoutResp.BoletoLine)
		fmt.Println("The subscription activates after the boleto clears.")
	}

	return nil
}

func knownPlan(plans []api.Plan, planID string) bool {
	for _, p := range plans {
		if p.ID == planID {
			return true
		}
	}
	return false
}

func promptPlan(plans []api.Plan) (string, error) {
	labels := make([]string, len(plans))
	for i, p := range plans {
		labels[i] = fmt.Sprintf("%s — R$ %.2f/month", p.Name, p.Price)
	}

	prompt := promptui.Select{
		Label: "Choose a plan",
		Items: labels,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("plan selection cancelled: %w", err)
	}

	return plans[idx].ID, nil
}

func promptMethod() (string, error) {
	prompt := promptui.Select{
		Label: "Payment method",
		Items: []string{api.PaymentMethodCard, api.PaymentMethodPix, api.PaymentMethodBoleto},
	}
	_, method, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("payment method selection cancelled: %w", err)
	}
	return method, nil
}

// collectCardDetails prompts for and validates card data. Card details are
// only validated locally; the dev backend does not charge anything.
func collectCardDetails() error {
	number, err := (&promptui.Prompt{Label: "Card number"}).Run()
	if err != nil {
		return fmt.Errorf("checkout cancelled: %w", err)
	}
	holder, err := (&promptui.Prompt{Label: "Name on card"}).Run()
	if err != nil {
		return fmt.Errorf("checkout cancelled: %w", err)
	}
	expiry, err := (&promptui.Prompt{Label: "Expiry (MM/YY)"}).Run()
	if err != nil {
		return fmt.Errorf("checkout cancelled: %w", err)
	}
	cvv, err := (&promptui.Prompt{Label: "CVV", Mask: '*'}).Run()
	if err != nil {
		return fmt.Errorf("checkout cancelled: %w", err)
	}

	form := forms.CardForm{Number: number, Holder: holder, Expiry: expiry, CVV: cvv}
	if errs := form.Validate(time.Now()); len(errs) > 0 {
		printFieldErrors(errs)
		return fmt.Errorf("checkout aborted: fix the card details above")
	}

	fmt.Printf("Card %s accepted.\n", forms.FormatCardNumber(number))
	return nil
}

func collectBoletoCPF() error {
	cpf, err := (&promptui.Prompt{Label: "CPF for the boleto"}).Run()
	if err != nil {
		return fmt.Errorf("checkout cancelled: %w", err)
	}
	if !forms.ValidCPF(cpf) {
		return fmt.Errorf("cpf is invalid")
	}
	return nil
}
