package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewSettingsCommand groups app-wide settings operations.
func NewSettingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "App-wide settings and flags",
	}
	cmd.AddCommand(newSettingsShowCommand(opts))
	cmd.AddCommand(newSettingsModuleCommand(opts))
	cmd.AddCommand(newSettingsGrantMicCommand(opts))
	cmd.AddCommand(newSettingsRevokeMicCommand(opts))
	return cmd
}

func newSettingsShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			s := env.Vault.AppSettings()
			mic := env.Vault.MicPermissionGranted()
			view := struct {
				ActiveModule string `json:"activeModule"`
				MicGranted   bool   `json:"micPermissionGranted"`
			}{s.ActiveModule, mic}
			return emit(cmd.OutOrStdout(), opts, view, func(out io.Writer) {
				printf(out, "active module: %s\n", s.ActiveModule)
				printf(out, "mic permission: %t\n", mic)
			})
		},
	}
}

func newSettingsModuleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "module <name>",
		Short: "Set the active module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			s := env.Vault.AppSettings()
			s.ActiveModule = args[0]
			env.Vault.SaveAppSettings(s)
			printf(cmd.OutOrStdout(), "active module set to %s\n", s.ActiveModule)
			return nil
		},
	}
}

func newSettingsGrantMicCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-mic",
		Short: "Grant microphone capture permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Vault.SetMicPermissionGranted(true)
			printf(cmd.OutOrStdout(), "microphone permission granted\n")
			return nil
		},
	}
}

func newSettingsRevokeMicCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-mic",
		Short: "Revoke microphone capture permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Vault.SetMicPermissionGranted(false)
			printf(cmd.OutOrStdout(), "microphone permission revoked\n")
			return nil
		},
	}
}
