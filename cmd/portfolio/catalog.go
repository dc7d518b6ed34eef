package main

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarise the portfolio and its cluster distribution",
	Args:  cobra.NoArgs,
	RunE:  runOverview,
}

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List the strategic clusters",
	Args:  cobra.NoArgs,
	RunE:  runClusters,
}

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "List the scoring criteria",
	Args:  cobra.NoArgs,
	RunE:  runCriteria,
}

func runOverview(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(cmd.Context()); err != nil {
		return err
	}
	ov := a.store.Overview()

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), ov)
	}
	tw := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Ideas:\t%d\n", ov.TotalIdeas)
	fmt.Fprintf(tw, "Clusters:\t%d\n", ov.TotalClusters)
	fmt.Fprintf(tw, "Business models:\t%d\n", ov.TotalBusinessModels)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CLUSTER\tIDEAS\tSHARE")
	for _, c := range ov.ClusterDistribution {
		share := 0.0
		if ov.TotalIdeas > 0 {
			share = float64(c.Count) * 100 / float64(ov.TotalIdeas)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", c.Name, c.Count, share)
	}
	return tw.Flush()
}

func runClusters(cmd *cobra.Command, args []string) error {
	clusters := catalog.Clusters()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), clusters)
	}
	tw := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tSHORT TITLE\tTITLE")
	for _, c := range clusters {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.ShortTitle, c.Title)
	}
	return tw.Flush()
}

func runCriteria(cmd *cobra.Command, args []string) error {
	criteria := catalog.Criteria()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), criteria)
	}
	out := cmd.OutOrStdout()
	for _, c := range criteria {
		fmt.Fprintf(out, "%d. %s (%s)\n", c.ID, c.Title, c.ShortTitle)
		fmt.Fprintf(out, "   %s\n", c.Description)
		if len(c.SubCriteria) > 0 {
			fmt.Fprintf(out, "   - %s\n", strings.Join(c.SubCriteria, "\n   - "))
		}
	}
	return nil
}
