package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"leveller/internal/counter"
	"leveller/internal/model"
	"leveller/internal/onset"
)

// NewSessionCommand groups the mantra session operations.
func NewSessionCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage mantra counting sessions",
	}
	cmd.AddCommand(newSessionStartCommand(opts))
	cmd.AddCommand(newSessionListCommand(opts))
	cmd.AddCommand(newSessionCountCommand(opts))
	cmd.AddCommand(newSessionListenCommand(opts))
	cmd.AddCommand(newSessionEndCommand(opts))
	cmd.AddCommand(newSessionResumeCommand(opts))
	cmd.AddCommand(newSessionDeleteCommand(opts))
	return cmd
}

// newCounter wires a Counter against the environment. Persistence
// failures surface as one-line notices; memory stays authoritative.
func newCounter(env *Env, opts ...counter.Option) *counter.Counter {
	base := []counter.Option{
		counter.WithLogger(env.Logger),
		counter.WithFlushDebounce(env.Config.FlushDebounce()),
		counter.OnError(func(err error) {
			env.Warn("session save failed: %v", err)
		}),
	}
	return counter.New(env.Vault, append(base, opts...)...)
}

func newSessionStartCommand(opts *RootOptions) *cobra.Command {
	var params counter.StartParams
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new counting session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()
			session, err := c.Start(cmd.Context(), params)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, session, func(w io.Writer) {
				printf(w, "started session %s (%q, target %d)\n",
					session.ID, session.MantraText, session.RequiredRepetitions)
			})
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "session name")
	cmd.Flags().StringVar(&params.MantraText, "mantra", "", "mantra text (required)")
	cmd.Flags().IntVar(&params.RequiredRepetitions, "target", model.TargetTenThousandEight,
		"required repetitions (10008, 20000, 100000 or any positive number)")
	cmd.Flags().StringVar(&params.DateOfBirth, "dob", "", "date of birth")
	cmd.Flags().StringVar(&params.TimeOfBirth, "tob", "", "time of birth")
	cmd.Flags().StringVar(&params.RitualDescription, "ritual", "", "ritual description")
	return cmd
}

func newSessionListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			sessions, err := env.Vault.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(sessions, func(i, j int) bool {
				return sessions[i].StartedAt > sessions[j].StartedAt
			})
			return emit(cmd.OutOrStdout(), opts, sessions, func(w io.Writer) {
				for _, s := range sessions {
					status := "ended"
					if s.IsActive {
						status = "active"
					}
					printf(w, "%s  %-7s %6d/%-6d  %s\n",
						s.ID, status, s.CurrentRepetitions, s.RequiredRepetitions, s.Name)
				}
			})
		},
	}
}

func newSessionCountCommand(opts *RootOptions) *cobra.Command {
	var (
		channel string
		n       int
	)
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Record repetitions against the last active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()
			if _, ok, err := c.ResumeLast(cmd.Context()); err != nil {
				return err
			} else if !ok {
				return counter.ErrNoActiveSession
			}

			for i := 0; i < n; i++ {
				completed, err := c.RecordEvent(cmd.Context(), model.Channel(channel))
				if err != nil {
					return err
				}
				if completed {
					s, _ := c.Session()
					printf(cmd.OutOrStdout(), "session %q completed at %d repetitions\n",
						s.Name, s.CurrentRepetitions)
					return nil
				}
			}
			session, _ := c.Session()
			return emit(cmd.OutOrStdout(), opts, session, func(w io.Writer) {
				printf(w, "%d/%d repetitions\n",
					session.CurrentRepetitions, session.RequiredRepetitions)
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", string(model.ChannelTap), "event channel (tap|voice|manual)")
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of repetitions to record")
	return cmd
}

// newSessionListenCommand drives the voice channel from a synthetic
// amplitude feed: one mean magnitude (0-255) per stdin line. Real
// capture hardware plugs in behind the same onset.Source contract.
func newSessionListenCommand(opts *RootOptions) *cobra.Command {
	var (
		threshold float64
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Count voice onsets from an amplitude feed on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if !env.Vault.MicPermissionGranted() {
				return fmt.Errorf("%w: microphone permission not granted (run: leveller settings grant-mic)",
					onset.ErrCaptureUnavailable)
			}

			c := newCounter(env)
			defer c.Close()
			if _, ok, err := c.ResumeLast(cmd.Context()); err != nil {
				return err
			} else if !ok {
				return counter.ErrNoActiveSession
			}

			source := onset.NewSyntheticSource()
			detector := onset.New(source,
				onset.WithThreshold(threshold),
				onset.WithDebounce(debounce),
				onset.WithLogger(env.Logger),
			)
			events, err := detector.Start(cmd.Context())
			if err != nil {
				return err
			}
			defer detector.Stop()

			done := make(chan struct{})
			go func() {
				defer close(done)
				for range events {
					completed, err := c.RecordEvent(cmd.Context(), model.ChannelVoice)
					if err != nil {
						env.Warn("voice event rejected: %v", err)
						return
					}
					s, _ := c.Session()
					printf(cmd.OutOrStdout(), "onset -> %d/%d\n",
						s.CurrentRepetitions, s.RequiredRepetitions)
					if completed {
						printf(cmd.OutOrStdout(), "session completed\n")
						return
					}
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				level, err := strconv.Atoi(string(scanner.Bytes()))
				if err != nil || level < 0 || level > 255 {
					continue
				}
				source.Push(onset.UniformFrame(onset.DefaultFrameSize, byte(level)))
				select {
				case <-done:
					return scanner.Err()
				default:
				}
			}
			detector.Stop()
			<-done
			return scanner.Err()
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", onset.DefaultThreshold, "energy threshold (0-255)")
	cmd.Flags().DurationVar(&debounce, "debounce", onset.DefaultDebounce, "onset debounce window")
	return cmd
}

func newSessionEndCommand(opts *RootOptions) *cobra.Command {
	var finalCount int
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the last active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()
			if _, ok, err := c.ResumeLast(cmd.Context()); err != nil {
				return err
			} else if !ok {
				return counter.ErrNoActiveSession
			}

			var final *int
			if cmd.Flags().Changed("count") {
				final = &finalCount
			}
			session, err := c.End(cmd.Context(), final)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, session, func(w io.Writer) {
				printf(w, "ended session %q at %d/%d repetitions\n",
					session.Name, session.CurrentRepetitions, session.RequiredRepetitions)
			})
		},
	}
	cmd.Flags().IntVar(&finalCount, "count", 0, "final repetition count override")
	return cmd
}

func newSessionResumeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Make a stored session the live one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()
			session, err := c.Resume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, session, func(w io.Writer) {
				printf(w, "resumed session %q at %d/%d repetitions\n",
					session.Name, session.CurrentRepetitions, session.RequiredRepetitions)
			})
		},
	}
}

func newSessionDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			c := newCounter(env)
			defer c.Close()
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "deleted session %s\n", args[0])
			return nil
		},
	}
}
