// sunyield is a small CLI for the SunYield platform: log in, inspect the
// wallet and projects, add funds and request withdrawals from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/config"
	"github.com/sunyield/sunyield-go/funding"
	"github.com/sunyield/sunyield-go/session"
	"github.com/sunyield/sunyield-go/wallet"
	"github.com/sunyield/sunyield-go/withdrawal"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tokens := api.NewFileTokenStore(cfg.TokenFile)
	client := api.NewClient(cfg, tokens)
	client.OnAuthExpired = func(scope api.TokenScope) {
		log.Printf("Session expired (%s token cleared), please log in again", scope)
	}

	ctx := context.Background()

	var cmdErr error
	switch os.Args[1] {
	case "login":
		cmdErr = runLogin(ctx, client, os.Args[2:])
	case "logout":
		session.New(client).Logout()
		fmt.Println("Logged out")
	case "wallet":
		cmdErr = runWallet(ctx, client)
	case "projects":
		cmdErr = runProjects(ctx, client)
	case "fund":
		cmdErr = runFund(ctx, client, cfg, os.Args[2:])
	case "withdraw":
		cmdErr = runWithdraw(ctx, client, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if cmdErr != nil {
		log.Fatalf("%v", cmdErr)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: sunyield <command> [flags]

Commands:
  login     -email -password      authenticate and persist the session token
  logout                          clear the persisted session
  wallet                          show balance and recent transactions
  projects                        list active solar projects
  fund      -amount [-coupon]     add funds to the wallet (card payment)
  withdraw  -amount -upi          request a withdrawal to a UPI id`)
}

func runLogin(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	sess := session.New(client)
	if err := sess.LoginWithCredentials(ctx, *email, *password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	user := sess.User()
	fmt.Printf("Logged in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func restoreSession(ctx context.Context, client *api.Client) (*session.Session, error) {
	sess := session.New(client)
	if err := sess.Restore(ctx); err != nil {
		return nil, err
	}
	if !sess.IsAuthenticated() {
		return nil, fmt.Errorf("not logged in; run `sunyield login` first")
	}
	return sess, nil
}

func runWallet(ctx context.Context, client *api.Client) error {
	if _, err := restoreSession(ctx, client); err != nil {
		return err
	}

	store := wallet.NewStore(client)
	w, err := store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	fmt.Printf("Balance:        ₹%.2f\n", w.Balance)
	fmt.Printf("Total invested: ₹%.2f\n", w.TotalInvested)
	fmt.Printf("Total earnings: ₹%.2f\n", w.TotalEarnings)

	txns, err := client.WalletTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(txns) > 0 {
		fmt.Println("\nRecent transactions:")
		for i, t := range txns {
			if i == 10 {
				break
			}
			fmt.Printf("  %-6s ₹%-10.2f %s\n", t.Type, t.Amount, t.Notes)
		}
	}
	return nil
}

func runProjects(ctx context.Context, client *api.Client) error {
	projects, err := client.ActiveProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}
	for _, p := range projects {
		fmt.Printf("#%d %s — %s\n", p.ID, p.Name, p.Location)
		fmt.Printf("    capacity %.0f W, minimum contribution ₹%.0f\n",
			p.EnergyCapacity, p.MinimumContribution())
	}
	return nil
}

func runFund(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fund", flag.ExitOnError)
	amount := fs.Float64("amount", 1000, "amount to add")
	coupon := fs.String("coupon", "", "optional coupon code")
	fs.Parse(args)

	if _, err := restoreSession(ctx, client); err != nil {
		return err
	}

	store := wallet.NewStore(client)
	if _, err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}

	wiz := funding.NewWizard(client, store, cfg)
	wiz.SetAmount(*amount)
	if *coupon != "" {
		discount, err := wiz.ApplyCoupon(ctx, *coupon)
		if err != nil {
			return fmt.Errorf("coupon rejected: %w", err)
		}
		fmt.Printf("Coupon %s applied, discount ₹%.2f\n", *coupon, discount)
	}
	if err := wiz.Proceed(); err != nil {
		return err
	}

	// The CLI pays with a fixed demo card; the stub gateway accepts anything.
	wiz.SelectMethod(funding.MethodCard)
	wiz.SetCardDetails(funding.CardDetails{
		Number: "4111111111111111",
		Name:   "SunYield CLI",
		Expiry: "12/30",
		CVV:    "123",
	})

	fmt.Printf("Paying ₹%.2f...\n", wiz.FinalAmount())
	receipt, err := wiz.Pay(ctx)
	if err != nil {
		return fmt.Errorf("payment failed: %w", err)
	}
	fmt.Printf("Payment confirmed, order %s, ₹%.2f credited\n", receipt.OrderID, receipt.Amount)

	if balance, ok := store.Balance(); ok {
		fmt.Printf("New balance: ₹%.2f\n", balance)
	}
	return nil
}

func runWithdraw(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "amount to withdraw")
	upi := fs.String("upi", "", "destination UPI id")
	fs.Parse(args)

	if _, err := restoreSession(ctx, client); err != nil {
		return err
	}

	store := wallet.NewStore(client)
	if _, err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}

	wiz := withdrawal.NewWizard(client, store, cfg)
	if err := wiz.RefreshCapInfo(ctx); err != nil {
		return fmt.Errorf("failed to load withdrawal limits: %w", err)
	}
	wiz.SetAmount(*amount)
	wiz.SetUPIID(*upi)

	if errs := wiz.Validate(); !errs.OK() {
		if errs.Amount != "" {
			return fmt.Errorf("%s", errs.Amount)
		}
		return fmt.Errorf("%s", errs.UPIID)
	}

	receipt, err := wiz.Submit(ctx)
	if err != nil {
		return fmt.Errorf("withdrawal failed: %w", err)
	}
	fmt.Printf("Withdrawal requested, order %s, ₹%.2f to %s\n",
		receipt.OrderID, receipt.Amount, receipt.UPIID)

	if balance, ok := store.Balance(); ok {
		fmt.Printf("New balance: ₹%.2f\n", balance)
	}
	return nil
}
