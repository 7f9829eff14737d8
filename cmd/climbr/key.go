package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/climbr/internal/cli"
	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/config"
	"github.com/Veraticus/climbr/internal/llm"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored vision API key",
		Long: `Store, show or remove the vision API key kept in the climbr database.

Each provider has its own stored key. Commands act on --provider, or on
vision.provider from the config when the flag is omitted.

A key in the config file, CLIMBR_VISION_API_KEY or the provider's own
environment variable (ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY)
takes precedence over the stored one.`,
	}

	cmd.PersistentFlags().String("provider", "", "Vision provider the key belongs to (anthropic, openai, gemini)")

	cmd.AddCommand(keySetCmd())
	cmd.AddCommand(keyShowCmd())
	cmd.AddCommand(keyClearCmd())

	return cmd
}

func keySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [value]",
		Short: "Store the API key (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return common.NewUserError("the key is empty; use `climbr key clear` to remove it", common.ErrInvalidConfig)
			}

			cred, provider, closeStore, err := openCredential(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := cred.Set(cmd.Context(), value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Stored "+provider+" API key "+config.Mask(value)))
			return nil
		},
	}
}

func keyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored API key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, provider, closeStore, err := openCredential(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			if !cred.Present() {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No "+provider+" API key stored; analysis runs in demo mode"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.Mask(cred.Get()))
			return nil
		},
	}
}

func keyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, provider, closeStore, err := openCredential(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := cred.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(provider+" API key removed"))
			return nil
		},
	}
}

// openCredential loads the stored key for the selected provider.
func openCredential(cmd *cobra.Command) (*config.Credential, string, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, "", nil, err
	}

	provider := settings.Provider
	if flag, _ := cmd.Flags().GetString("provider"); flag != "" {
		provider = strings.ToLower(strings.TrimSpace(flag))
	}
	if !llm.Supported(provider) {
		return nil, "", nil, common.NewUserError(fmt.Sprintf("unknown vision provider %q", provider), common.ErrInvalidConfig)
	}

	store, err := openStorage(cmd.Context(), settings)
	if err != nil {
		return nil, "", nil, err
	}

	cred := config.NewCredential(store, config.CredentialKeyFor(provider))
	if err := cred.Load(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, "", nil, err
	}
	return cred, provider, func() { _ = store.Close() }, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
