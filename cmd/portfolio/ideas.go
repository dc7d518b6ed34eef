package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperengineering/portfolio/internal/portfolio"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/spf13/cobra"
)

var (
	listCluster string
	listModel   string
	listBand    string
	listStatus  string
	listSort    string

	ideaService  string
	ideaNeed     string
	ideaCluster  string
	ideaModel    string
	ideaAudience string
	ideaStatus   string
	ideaCreator  string
	ideaScores   string
	ideaRevenue  float64
	ideaGenerate bool

	deleteForce bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ideas",
	Long:  "List ideas, most recent first, or by total score with --sort priority. Filters combine.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one idea with its per-criterion scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an idea",
	Long:  "Add an idea. The backend assigns id, creation date, zero scores and zero revenue. With --generate the AI fills need, audience and business model when they are not given.",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an idea",
	Long:  "Edit an idea. Only the flags given change; the full record is sent and replaced on confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change an idea's workflow status",
	Long:  "Change an idea's workflow status. Valid statuses: avaliação, aprovada, cancelada, finalizada (labels are accepted too).",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an idea",
	Long:  "Permanently delete an idea. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().StringVar(&listCluster, "cluster", "", "Filter by cluster (id or title)")
	listCmd.Flags().StringVar(&listModel, "model", "", "Filter by business model category")
	listCmd.Flags().StringVar(&listBand, "band", "", "Filter by priority band: Altíssima, Alta, Média, Baixa")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&listSort, "sort", "recent", "Sort order: recent, priority")

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&ideaService, "service", "", "Service title")
		c.Flags().StringVar(&ideaNeed, "need", "", "Main benefit / customer need")
		c.Flags().StringVar(&ideaCluster, "cluster", "", "Strategic cluster (id or title)")
		c.Flags().StringVar(&ideaModel, "model", "", "Business model")
		c.Flags().StringVar(&ideaAudience, "audience", "", "Target audience")
		c.Flags().StringVar(&ideaStatus, "status", "", "Workflow status")
	}
	addCmd.Flags().StringVar(&ideaCreator, "creator", "", "Creator name (default: logged-in user)")
	addCmd.Flags().BoolVar(&ideaGenerate, "generate", false, "Fill missing fields with AI suggestions")
	updateCmd.Flags().StringVar(&ideaScores, "scores", "", "Scores per criterion, e.g. 5,4,3,5,4")
	updateCmd.Flags().Float64Var(&ideaRevenue, "revenue", 0, "Revenue estimate")

	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid idea id %q", raw)
	}
	return id, nil
}

func runList(cmd *cobra.Command, args []string) error {
	f := portfolio.Filter{}
	if listCluster != "" {
		f.Cluster = clusterLabel(listCluster)
	}
	if listModel != "" {
		model, err := parseBusinessModel(listModel)
		if err != nil {
			return err
		}
		f.BusinessModel = model
	}
	if listBand != "" {
		band, err := parseBand(listBand)
		if err != nil {
			return err
		}
		f.Band = band
	}
	if listStatus != "" {
		status, err := parseStatus(listStatus)
		if err != nil {
			return err
		}
		f.Status = status
	}
	if listSort != "recent" && listSort != "priority" {
		return fmt.Errorf("unknown sort %q (valid: recent, priority)", listSort)
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(cmd.Context()); err != nil {
		return err
	}

	var ideas []types.Idea
	if listSort == "priority" {
		for _, r := range a.store.Prioritized() {
			if f.Match(r.Idea) {
				ideas = append(ideas, r.Idea)
			}
		}
	} else {
		ideas = a.store.Filter(f)
	}

	if jsonOutput {
		if ideas == nil {
			ideas = []types.Idea{}
		}
		return printJSON(cmd.OutOrStdout(), ideas)
	}
	if len(ideas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No ideas found.")
		return nil
	}
	return printIdeaTable(cmd.OutOrStdout(), ideas)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(cmd.Context()); err != nil {
		return err
	}
	idea, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("idea %d: %w", id, portfolio.ErrIdeaNotFound)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), idea)
	}
	return printIdea(cmd.OutOrStdout(), idea)
}

func runAdd(cmd *cobra.Command, args []string) error {
	idea := types.NewIdea{
		Service:        strings.TrimSpace(ideaService),
		Need:           ideaNeed,
		Cluster:        clusterLabel(ideaCluster),
		BusinessModel:  ideaModel,
		TargetAudience: ideaAudience,
		CreatorName:    ideaCreator,
	}
	if ideaStatus != "" {
		status, err := parseStatus(ideaStatus)
		if err != nil {
			return err
		}
		idea.Status = status
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if ideaGenerate && (idea.Need == "" || idea.TargetAudience == "" || idea.BusinessModel == "") {
		details, err := a.store.GenerateIdeaDetails(ctx, idea.Service)
		if err != nil {
			return fmt.Errorf("generate details: %w", err)
		}
		if idea.Need == "" {
			idea.Need = details.Benefit
		}
		if idea.TargetAudience == "" {
			idea.TargetAudience = details.Audience
		}
		if idea.BusinessModel == "" {
			idea.BusinessModel = details.Model
		}
	}
	if idea.CreatorName == "" {
		if u := a.gate.User(); u != nil {
			idea.CreatorName = u.Name
		}
	}

	created, err := a.store.Create(ctx, idea)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), created)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created idea %d %q\n", created.ID, created.Service)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := a.load(ctx); err != nil {
		return err
	}
	idea, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("idea %d: %w", id, portfolio.ErrIdeaNotFound)
	}

	flags := cmd.Flags()
	if flags.Changed("service") {
		idea.Service = strings.TrimSpace(ideaService)
	}
	if flags.Changed("need") {
		idea.Need = ideaNeed
	}
	if flags.Changed("cluster") {
		idea.Cluster = clusterLabel(ideaCluster)
	}
	if flags.Changed("model") {
		idea.BusinessModel = ideaModel
	}
	if flags.Changed("audience") {
		idea.TargetAudience = ideaAudience
	}
	if flags.Changed("status") {
		status, err := parseStatus(ideaStatus)
		if err != nil {
			return err
		}
		idea.Status = status
	}
	if flags.Changed("scores") {
		scores, err := parseScores(ideaScores)
		if err != nil {
			return err
		}
		idea.Scores = scores
	}
	if flags.Changed("revenue") {
		idea.RevenueEstimate = ideaRevenue
	}

	saved, err := a.store.Update(ctx, idea)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), saved)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated idea %d (total %d)\n", saved.ID, saved.Total())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := a.load(ctx); err != nil {
		return err
	}
	saved, err := a.store.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), saved)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Idea %d is now %s\n", saved.ID, saved.EffectiveStatus().Label())
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := a.load(ctx); err != nil {
		return err
	}
	idea, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("idea %d: %w", id, portfolio.ErrIdeaNotFound)
	}

	// Interactive confirmation unless --force
	if !deleteForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will permanently delete idea %d %q.\n", id, idea.Service)
		fmt.Fprint(errOut, "Type the idea ID to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if strings.TrimSpace(input) != strconv.Itoa(id) {
			fmt.Fprintln(errOut, "Aborted. Idea ID did not match.")
			return nil
		}
	}

	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      id,
			"deleted": true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted idea %d\n", id)
	return nil
}
