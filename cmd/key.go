package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/web3-jobs/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage ai provider keys stored in the OS keychain",
}

var keySetCmd = &cobra.Command{
	Use:       "set <provider>",
	Short:     "Store an api key for openai or gemini in the OS keychain",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{ProviderOpenAI, ProviderGemini},
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(strings.TrimSpace(args[0]))
		if provider != ProviderOpenAI && provider != ProviderGemini {
			return fmt.Errorf("unsupported ai provider: %s", args[0])
		}

		input := promptui.Prompt{
			Label: provider + " api key",
			Mask:  '*',
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("key must not be empty")
				}
				return nil
			},
		}

		secret, err := input.Run()
		if err != nil {
			return err
		}

		if err := secrets.Store(provider, secret); err != nil {
			return fmt.Errorf("storing %s key: %w", provider, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "stored %s key in the keychain under %q\n", provider, secrets.KeyringService)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	rootCmd.AddCommand(keyCmd)
}
