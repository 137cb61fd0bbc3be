package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/lenah/internal/credential"
	"github.com/nhle/lenah/internal/model"
)

var keyValue string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage language-model API keys in the system keyring",
}

var keySetCmd = &cobra.Command{
	Use:   "set [provider]",
	Short: "Store an API key (prompts when --value is not given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := keyProvider(args)
		if err != nil {
			return err
		}

		value := strings.TrimSpace(keyValue)
		if value == "" {
			err := huh.NewInput().
				Title(fmt.Sprintf("%s API key", provider)).
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Run()
			if err != nil {
				return err
			}
			value = strings.TrimSpace(value)
		}
		if value == "" {
			return fmt.Errorf("no key given")
		}

		if err := newStore().Set(credential.KeyName(provider), value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key in the keyring.\n", provider)
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete [provider]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := keyProvider(args)
		if err != nil {
			return err
		}
		if err := newStore().Delete(credential.KeyName(provider)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key.\n", provider)
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where each provider's API key comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printKeyStatus(cmd, newStore())
	},
}

func init() {
	keySetCmd.Flags().StringVar(&keyValue, "value", "", "key value (avoid; ends up in shell history)")
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd, keyStatusCmd)
	rootCmd.AddCommand(keyCmd)
}

// keyProvider returns the provider named in args or the configured one.
func keyProvider(args []string) (string, error) {
	provider := cfg.AI.Provider
	if len(args) == 1 {
		provider = strings.ToLower(strings.TrimSpace(args[0]))
	}
	switch provider {
	case model.ProviderOpenAI, model.ProviderAnthropic:
		return provider, nil
	case model.ProviderOffline:
		return "", fmt.Errorf("the offline provider needs no key")
	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}

func printKeyStatus(cmd *cobra.Command, store *credential.Store) error {
	out := cmd.OutOrStdout()
	for _, p := range []string{model.ProviderOpenAI, model.ProviderAnthropic} {
		key, source, err := store.APIKey(p)
		if err != nil {
			return err
		}
		marker := " "
		if p == cfg.AI.Provider {
			marker = "*"
		}
		switch {
		case key == "":
			fmt.Fprintf(out, "%s %-10s not set\n", marker, p)
		default:
			fmt.Fprintf(out, "%s %-10s %s\n", marker, p, source)
		}
	}
	return nil
}
