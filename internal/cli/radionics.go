package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"leveller/internal/model"
	"leveller/internal/sim"
)

// NewRadionicsCommand groups the radionics module operations.
func NewRadionicsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radionics",
		Short: "Radionics presets and emissions",
	}
	cmd.AddCommand(newRadionicsEmitCommand(opts))
	cmd.AddCommand(newRadionicsLogsCommand(opts))
	cmd.AddCommand(newRadionicsSaveCommand(opts))
	cmd.AddCommand(newRadionicsListCommand(opts))
	cmd.AddCommand(newRadionicsDeleteCommand(opts))
	return cmd
}

func rateFlags(cmd *cobra.Command, rates *model.RadionicsRates) {
	cmd.Flags().IntVar(&rates.Trend1, "trend1", 0, "trend dial 1")
	cmd.Flags().IntVar(&rates.Trend2, "trend2", 0, "trend dial 2")
	cmd.Flags().IntVar(&rates.Trend3, "trend3", 0, "trend dial 3")
	cmd.Flags().IntVar(&rates.Target1, "target1", 0, "target dial 1")
	cmd.Flags().IntVar(&rates.Target2, "target2", 0, "target dial 2")
	cmd.Flags().IntVar(&rates.Target3, "target3", 0, "target dial 3")
}

func newRadionicsEmitCommand(opts *RootOptions) *cobra.Command {
	var (
		rates     model.RadionicsRates
		resonance int
		witness   string
	)
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Perform one emission, consuming pool energy",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var w *model.RadionicsWitness
			if witness != "" {
				w = &model.RadionicsWitness{Type: model.WitnessText, Data: witness}
			}

			r := sim.NewRadionics(env.Vault)
			log, err := r.Emit(cmd.Context(), rates, resonance, w)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, log, func(out io.Writer) {
				printf(out, "emitted at resonance %d, consumed %.2f energy (%.1f remaining)\n",
					log.ResonanceStrength, log.EnergyConsumed, r.EnergyPool())
			})
		},
	}
	rateFlags(cmd, &rates)
	cmd.Flags().IntVar(&resonance, "resonance", 50, "resonance strength")
	cmd.Flags().StringVar(&witness, "witness", "", "text witness")
	return cmd
}

func newRadionicsLogsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show the emission history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			r := sim.NewRadionics(env.Vault)
			logs, err := r.EmissionLogs(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, logs, func(out io.Writer) {
				for _, l := range logs {
					ts := time.UnixMilli(l.Timestamp).Format(time.RFC3339)
					printf(out, "%s  resonance=%-3d energy=%-6.2f %s\n",
						ts, l.ResonanceStrength, l.EnergyConsumed, l.WitnessInfo)
				}
			})
		},
	}
}

func newRadionicsSaveCommand(opts *RootOptions) *cobra.Command {
	var (
		preset  model.RadionicsPreset
		witness string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the dial configuration as a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if witness != "" {
				preset.Witness = &model.RadionicsWitness{Type: model.WitnessText, Data: witness}
			}
			r := sim.NewRadionics(env.Vault)
			saved, err := r.SavePreset(cmd.Context(), preset)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, saved, func(out io.Writer) {
				printf(out, "saved preset %s (%q)\n", saved.ID, saved.Name)
			})
		},
	}
	cmd.Flags().StringVar(&preset.Name, "name", "", "preset name")
	rateFlags(cmd, &preset.Rates)
	cmd.Flags().StringVar(&witness, "witness", "", "text witness")
	return cmd
}

func newRadionicsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			r := sim.NewRadionics(env.Vault)
			presets, err := r.Presets(cmd.Context())
			if err != nil {
				return err
			}
			last, _, _ := r.LastActivePreset(cmd.Context())
			return emit(cmd.OutOrStdout(), opts, presets, func(out io.Writer) {
				for _, p := range presets {
					marker := " "
					if p.ID == last.ID && last.ID != "" {
						marker = "*"
					}
					printf(out, "%s %s  %s\n", marker, p.ID, p.Name)
				}
			})
		},
	}
}

func newRadionicsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <preset-id>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			r := sim.NewRadionics(env.Vault)
			if err := r.DeletePreset(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "deleted preset %s\n", args[0])
			return nil
		},
	}
}
