package main

import (
	"fmt"
	"strconv"

	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/spf13/cobra"
)

func newShowCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the scoreboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.print(cmd)
			if s.tracker.ShouldShow(cmd.Context(), s.now()) {
				fmt.Fprintln(cmd.OutOrStdout(), tutorialTip)
			}
			return nil
		},
	}
}

func newRoundCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "round N",
		Short: "Select the current round (1-4)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid round %q", args[0])
			}
			s := get()
			s.controller.SetCurrentRound(cmd.Context(), n-1)
			s.print(cmd)
			return nil
		},
	}
}

func newScoreCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "score SLOT DELTA",
		Short: "Add DELTA to a player's score in the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid score change %q", args[1])
			}
			s := get()
			s.controller.AdjustPlayerScore(cmd.Context(), slot, delta)
			s.print(cmd)
			return nil
		},
	}
}

func newStatusCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status SLOT out|rescue",
		Short: "Set a player's status in the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			s := get()
			s.controller.SetPlayerStatus(cmd.Context(), slot, types.ParseStatus(args[1]))
			s.print(cmd)
			return nil
		},
	}
}

func newResetCmd(get func() *session) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the current round's scores, or every round with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			if all {
				s.controller.ResetAllScores(cmd.Context())
			} else {
				s.controller.ResetProvisionalScores(cmd.Context())
			}
			s.print(cmd)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reset every round and go back to round 1")
	return cmd
}

func newModeCmd(get func() *session) *cobra.Command {
	return &cobra.Command{
		Use:       "mode multi|personal",
		Short:     "Switch between multiplayer and personal mode, clearing all scores",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"multi", "personal"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.controller.SwitchMode(cmd.Context(), args[0] == "multi")
			s.print(cmd)
			return nil
		},
	}
}

const tutorialTip = `Tip: pick a round with "round N", add points with "score SLOT DELTA" and
mark rescued players with "status SLOT rescue". Only rescued players' points count.
Run "scorekeeper tutorial dismiss" to hide this tip for a week.`

func newTutorialCmd(get func() *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Show how to use the scoreboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), tutorialTip)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Hide the tutorial tip until next week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := get()
			s.tracker.Dismiss(cmd.Context(), s.now())
			return nil
		},
	})
	return cmd
}

// parseSlot reads a 1-based player number.
func parseSlot(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid player %q", arg)
	}
	return n - 1, nil
}
