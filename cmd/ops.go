package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"medals/config"
	"medals/service"
)

var (
	eventID  int64
	medalID  int64
	playerID int64
	actorID  string
	winners  int
	prize    string
	minScore string
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run a weighted distribution of an event's remaining pot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			result, err := a.services.Distribution.Distribute(cmd.Context(), eventID, medalID, actorID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var raffleCmd = &cobra.Command{
	Use:   "raffle",
	Short: "Draw weighted raffle winners from an event's pot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(prize)
		if err != nil {
			return fmt.Errorf("invalid --prize %q: %w", prize, err)
		}
		return withApp(cmd, func(a *app) error {
			result, err := a.services.Raffle.Draw(cmd.Context(), service.RaffleRequest{
				EventID: eventID,
				MedalID: medalID,
				Winners: winners,
				Prize:   amount,
				ActorID: actorID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Print aggregated scores of an event, mains only",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := service.ParseThreshold(minScore)
		if err != nil {
			return fmt.Errorf("invalid --min-score: %w", err)
		}
		return withApp(cmd, func(a *app) error {
			scores, err := a.services.Aggregation.Aggregate(cmd.Context(), eventID, threshold)
			if err != nil {
				return err
			}

			ids := make([]int64, 0, len(scores))
			for id := range scores {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintf(out, "%d\t%s\n", id, scores[id])
			}
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print a player's balance of one medal type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			balance, err := a.services.Ledger.Balance(cmd.Context(), playerID, medalID)
			if err != nil {
				return err
			}
			return printJSON(cmd, balance)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{distributeCmd, raffleCmd, aggregateCmd} {
		c.Flags().Int64Var(&eventID, "event", 0, "event id")
		_ = c.MarkFlagRequired("event")
	}
	for _, c := range []*cobra.Command{distributeCmd, raffleCmd, balanceCmd} {
		c.Flags().Int64Var(&medalID, "medal", 0, "medal type id")
		_ = c.MarkFlagRequired("medal")
	}
	for _, c := range []*cobra.Command{distributeCmd, raffleCmd} {
		c.Flags().StringVar(&actorID, "actor", "", "operator recorded on ledger rows")
		_ = c.MarkFlagRequired("actor")
	}

	raffleCmd.Flags().IntVar(&winners, "winners", 1, "number of distinct winners")
	raffleCmd.Flags().StringVar(&prize, "prize", "", "medals paid to each winner")
	_ = raffleCmd.MarkFlagRequired("prize")

	aggregateCmd.Flags().StringVar(&minScore, "min-score", "0", "minimum verified score to count")

	balanceCmd.Flags().Int64Var(&playerID, "player", 0, "player id")
	_ = balanceCmd.MarkFlagRequired("player")
}
