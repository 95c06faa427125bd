// Package cli implements the administrative subcommands of the authgate
// binary. Account administration talks straight to the identity provider;
// the HTTP surface intentionally has no admin endpoints.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clarityhq/authgate/internal/config"
	"github.com/clarityhq/authgate/internal/identity"
)

const adminCallTimeout = 30 * time.Second

// AccountAdminCommand performs administrative operations against the
// identity provider: lookup, disable, delete, update, reset-password.
type AccountAdminCommand struct {
	Action          string
	Email           string
	UID             string
	Name            string
	CredentialsPath string
}

func NewAccountAdminCommand() *AccountAdminCommand {
	return &AccountAdminCommand{}
}

func (cmd *AccountAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("account", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Account email (lookup, reset-password)")
	fs.StringVar(&cmd.UID, "uid", "", "Account uid (disable, delete, update)")
	fs.StringVar(&cmd.Name, "name", "", "New display name (update)")
	fs.StringVar(&cmd.CredentialsPath, "credentials", config.DefaultCredentialsPath, "Path to the identity provider credentials file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s account <action> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Administer identity provider accounts.\n\n")
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  lookup          Show the account for -email\n")
		fmt.Fprintf(os.Stderr, "  disable         Disable the account with -uid\n")
		fmt.Fprintf(os.Stderr, "  delete          Delete the account with -uid\n")
		fmt.Fprintf(os.Stderr, "  update          Set the display name of -uid to -name\n")
		fmt.Fprintf(os.Stderr, "  reset-password  Send a password reset email to -email\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if len(args) == 0 {
		fs.Usage()
		return fmt.Errorf("action required")
	}

	cmd.Action = args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch cmd.Action {
	case "lookup", "reset-password":
		if cmd.Email == "" {
			return fmt.Errorf("action %q requires -email", cmd.Action)
		}
	case "disable", "delete":
		if cmd.UID == "" {
			return fmt.Errorf("action %q requires -uid", cmd.Action)
		}
	case "update":
		if cmd.UID == "" || cmd.Name == "" {
			return fmt.Errorf("action update requires -uid and -name")
		}
	default:
		return fmt.Errorf("unknown action: %s", cmd.Action)
	}

	return nil
}

func (cmd *AccountAdminCommand) Run() error {
	creds, err := identity.LoadCredentials(cmd.CredentialsPath)
	if err != nil {
		return err
	}
	client := identity.NewClient(creds)

	ctx, cancel := context.WithTimeout(context.Background(), adminCallTimeout)
	defer cancel()

	switch cmd.Action {
	case "lookup":
		account, err := client.GetAccountByEmail(ctx, cmd.Email)
		if err != nil {
			return err
		}
		printAccount(account)

	case "disable":
		account, err := client.DisableAccount(ctx, cmd.UID)
		if err != nil {
			return err
		}
		fmt.Printf("Account %s disabled\n", account.UID)

	case "delete":
		if err := client.DeleteAccount(ctx, cmd.UID); err != nil {
			return err
		}
		fmt.Printf("Account %s deleted\n", cmd.UID)

	case "update":
		account, err := client.UpdateAccount(ctx, cmd.UID, identity.AccountUpdate{DisplayName: &cmd.Name})
		if err != nil {
			return err
		}
		printAccount(account)

	case "reset-password":
		if err := client.SendPasswordResetEmail(ctx, cmd.Email); err != nil {
			return err
		}
		fmt.Printf("Password reset email requested for %s\n", cmd.Email)
	}

	return nil
}

func printAccount(account *identity.Account) {
	fmt.Printf("UID:            %s\n", account.UID)
	fmt.Printf("Email:          %s\n", account.Email)
	fmt.Printf("Display name:   %s\n", account.DisplayName)
	fmt.Printf("Disabled:       %t\n", account.Disabled)
	fmt.Printf("Email verified: %t\n", account.EmailVerified)
}
