package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score every idea with the AI and save the result",
	Long:  "Ask the AI to score every idea against the five criteria, apply the returned scores and persist the changed ideas in one bulk update.",
	Args:  cobra.NoArgs,
	RunE:  runRank,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI a question about the portfolio",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var generateCmd = &cobra.Command{
	Use:   "generate <idea>",
	Short: "Suggest benefit, audience and business model for an idea title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := a.load(ctx); err != nil {
		return err
	}
	n, err := a.store.ApplyAIRanking(ctx)
	if err != nil {
		return err
	}

	ranked := a.store.Prioritized()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"rescored": n,
			"ideas":    ranked,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Re-scored %d ideas\n", n)
	tw := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(tw, "RANK\tID\tSERVICE\tTOTAL\tPRIORITY")
	for i, r := range ranked {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n", i+1, r.ID, truncate(r.Service, 40), r.TotalScore, r.Band)
	}
	return tw.Flush()
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := a.load(ctx); err != nil {
		return err
	}
	answer, err := a.store.Ask(ctx, query)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), answer)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if len(answer.GroundingChunks) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, c := range answer.GroundingChunks {
			fmt.Fprintf(out, "  - %s (%s)\n", c.Web.Title, c.Web.URI)
		}
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	details, err := a.store.GenerateIdeaDetails(cmd.Context(), title)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), details)
	}
	tw := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Benefit:\t%s\n", details.Benefit)
	fmt.Fprintf(tw, "Audience:\t%s\n", details.Audience)
	fmt.Fprintf(tw, "Model:\t%s\n", details.Model)
	return tw.Flush()
}
