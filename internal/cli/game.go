package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/edugames/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game record commands",
	}

	cmd.PersistentFlags().String("kind", string(model.GameKindMemory), "Game kind: memory, word-search, puzzle")

	cmd.AddCommand(newGameSubmitCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())

	return cmd
}

func gameKindFlag(cmd *cobra.Command) (model.GameKind, error) {
	raw, err := cmd.Flags().GetString("kind")
	if err != nil {
		return "", err
	}
	kind, err := model.ParseGameKind(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, raw)
	}
	return kind, nil
}

func gamesPath(userID string, kind model.GameKind) string {
	return fmt.Sprintf("%s/%s-games", userPath(userID), kind)
}

func newGameSubmitCmd() *cobra.Command {
	var (
		seconds     float64
		errs, turns int
	)

	cmd := &cobra.Command{
		Use:   "submit <user-id>",
		Short: "Record a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := gameKindFlag(cmd)
			if err != nil {
				return err
			}

			var req map[string]any
			if kind == model.GameKindPuzzle {
				if !cmd.Flags().Changed("turns") {
					return fmt.Errorf("--turns is required for puzzle games")
				}
				req = map[string]any{"turns": turns}
			} else {
				if !cmd.Flags().Changed("time") || !cmd.Flags().Changed("errors") {
					return fmt.Errorf("--time and --errors are required for %s games", kind)
				}
				req = map[string]any{"time": seconds, "erros": errs}
			}

			var result User
			if err := client.Post(cmd.Context(), gamesPath(args[0], kind), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&seconds, "time", 0, "Completion time in seconds (memory, word-search)")
	cmd.Flags().IntVar(&errs, "errors", 0, "Number of errors (memory, word-search)")
	cmd.Flags().IntVar(&turns, "turns", 0, "Number of turns (puzzle)")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's games of one kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := gameKindFlag(cmd)
			if err != nil {
				return err
			}

			var result []GameRecord
			if err := client.Get(cmd.Context(), gamesPath(args[0], kind), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id> <game-id>",
		Short: "Show a single game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := gameKindFlag(cmd)
			if err != nil {
				return err
			}

			var result GameRecord
			path := gamesPath(args[0], kind) + "/" + url.PathEscape(args[1])
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
