package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"leveller/internal/sim"
)

// NewTrackCommand groups the audio track library operations.
func NewTrackCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Manage the imported audio track library",
	}
	cmd.AddCommand(newTrackImportCommand(opts))
	cmd.AddCommand(newTrackListCommand(opts))
	cmd.AddCommand(newTrackExportCommand(opts))
	cmd.AddCommand(newTrackDeleteCommand(opts))
	return cmd
}

func newTrackImportCommand(opts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an audio file into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			t := sim.NewTracks(env.Vault)
			track, err := t.Import(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, track, func(out io.Writer) {
				printf(out, "imported %s as %s (%s)\n", args[0], track.ID, track.MimeType)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to file name)")
	return cmd
}

func newTrackListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported tracks by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			t := sim.NewTracks(env.Vault)
			tracks, err := t.List(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, tracks, func(out io.Writer) {
				for _, tr := range tracks {
					printf(out, "%s  %-20s %s\n", tr.ID, tr.Name, tr.MimeType)
				}
			})
		},
	}
}

func newTrackExportCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <track-id>",
		Short: "Write a track's audio payload back to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			t := sim.NewTracks(env.Vault)
			track, err := t.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := sim.Decode(track)
			if err != nil {
				return err
			}
			if out == "" {
				out = track.Name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to the track name)")
	return cmd
}

func newTrackDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <track-id>",
		Short: "Delete a track from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			t := sim.NewTracks(env.Vault)
			if err := t.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "deleted track %s\n", args[0])
			return nil
		},
	}
}
