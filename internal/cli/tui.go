package cli

import (
	"github.com/spf13/cobra"

	"leveller/internal/counter"
	"leveller/internal/model"
	"leveller/internal/tui"
)

// NewTUICommand opens the interactive counting panel for the last
// active session, or starts a new one when --mantra is given.
func NewTUICommand(opts *RootOptions) *cobra.Command {
	var params counter.StartParams
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive counting panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()

			session, ok, err := c.ResumeLast(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				if params.MantraText == "" {
					return counter.ErrNoActiveSession
				}
				session, err = c.Start(cmd.Context(), params)
				if err != nil {
					return err
				}
			}
			return tui.Run(c, session)
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "session name")
	cmd.Flags().StringVar(&params.MantraText, "mantra", "", "mantra text for a new session")
	cmd.Flags().IntVar(&params.RequiredRepetitions, "target", model.TargetTenThousandEight, "required repetitions")
	return cmd
}
