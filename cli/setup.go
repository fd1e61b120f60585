package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pothole-report/config"
	"pothole-report/storage"
)

func (a *App) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Store the reporting email in the OS keyring",
		Long: `Prompts for the email used when reporting and stores it in the OS keyring.
No config file is written. One is read, for keyring_account, only when
passed with -c.`,
		Args: cobra.NoArgs,
		RunE: a.wrap(a.runSetup),
	}
}

func (a *App) removeKeyringCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-keyring",
		Short: "Remove the stored reporting email from the OS keyring",
		Args:  cobra.NoArgs,
		RunE:  a.wrap(a.runRemoveKeyring),
	}
}

func (a *App) runSetup(cmd *cobra.Command, args []string) error {
	account := config.KeyringAccount(a.configPath)
	a.logger().Debug("keyring entry",
		zap.String("service", config.ServiceName),
		zap.String("account", account),
	)

	email, err := a.Prompter.Prompt("Email for reporting: ")
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if err := a.Credentials(account, a.logger()).SetEmail(email); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, green("Email stored in keyring."))
	return nil
}

func (a *App) runRemoveKeyring(cmd *cobra.Command, args []string) error {
	account := config.KeyringAccount(a.configPath)
	err := a.Credentials(account, a.logger()).DeleteEmail()
	if errors.Is(err, storage.ErrCredentialNotFound) {
		fmt.Fprintln(a.Out, faint("No keyring entry found (already removed or never set)."))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, green("Removed keyring entry."))
	return nil
}
