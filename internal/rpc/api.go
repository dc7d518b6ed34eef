package rpc

import (
	"context"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/types"
)

// API exposes the actions as typed methods over any Caller.
// Session tokens are not set here; the auth gate injects them.
type API struct {
	caller Caller
}

// NewAPI wraps caller.
func NewAPI(caller Caller) *API {
	return &API{caller: caller}
}

// GetServices lists every idea.
func (a *API) GetServices(ctx context.Context) ([]types.Idea, error) {
	var ideas []types.Idea
	if err := a.caller.Call(ctx, ActionGetServices, nil, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// AddService creates an idea; the backend assigns id, date and scores.
func (a *API) AddService(ctx context.Context, idea types.NewIdea) (types.Idea, error) {
	var created types.Idea
	err := a.caller.Call(ctx, ActionAddService, AddServicePayload{Service: idea}, &created)
	return created, err
}

// UpdateService replaces an idea, sent as its sheet row.
func (a *API) UpdateService(ctx context.Context, idea types.Idea) (types.Idea, error) {
	var updated types.Idea
	err := a.caller.Call(ctx, ActionUpdateService, UpdateServicePayload{Service: types.ToRow(idea)}, &updated)
	return updated, err
}

// BulkUpdateServices replaces several ideas in one call.
func (a *API) BulkUpdateServices(ctx context.Context, ideas []types.Idea) (types.BulkUpdateResult, error) {
	rows := make([]types.IdeaRow, len(ideas))
	for i, idea := range ideas {
		rows[i] = types.ToRow(idea)
	}
	var result types.BulkUpdateResult
	err := a.caller.Call(ctx, ActionBulkUpdateServices, BulkUpdatePayload{Services: rows}, &result)
	return result, err
}

// DeleteService removes an idea by id.
func (a *API) DeleteService(ctx context.Context, id int) (types.DeleteResult, error) {
	var result types.DeleteResult
	err := a.caller.Call(ctx, ActionDeleteService, DeletePayload{ID: id}, &result)
	return result, err
}

// GenerateIdeaDetails asks the AI to flesh out a raw idea title.
func (a *API) GenerateIdeaDetails(ctx context.Context, idea string) (types.GeneratedIdea, error) {
	var result types.GeneratedIdea
	err := a.caller.Call(ctx, ActionGenerateIdeaDetails, IdeaDetailsPayload{
		Idea:                    idea,
		CriteriaSummary:         catalog.CriteriaSummary(),
		BusinessModelCategories: catalog.BusinessModelCategories(),
	}, &result)
	return result, err
}

// Rank asks the AI to score ideas against the criteria catalog.
func (a *API) Rank(ctx context.Context, ideas []types.Idea) ([]types.Ranking, error) {
	var result []types.Ranking
	err := a.caller.Call(ctx, ActionRanking, RankingPayload{
		Services: ideas,
		Criteria: catalog.Criteria(),
	}, &result)
	return result, err
}

// Insight asks a free-text question about the given ideas.
func (a *API) Insight(ctx context.Context, query string, ideas []types.Idea) (types.Insight, error) {
	var result types.Insight
	err := a.caller.Call(ctx, ActionInsight, InsightPayload{UserQuery: query, Services: ideas}, &result)
	return result, err
}

// Login authenticates with e-mail and password.
func (a *API) Login(ctx context.Context, email, password string) (types.AuthResult, error) {
	var result types.AuthResult
	err := a.caller.Call(ctx, ActionLogin, LoginPayload{Email: email, Password: password}, &result)
	return result, err
}

// Register creates an account and authenticates it.
func (a *API) Register(ctx context.Context, name, email, password string) (types.AuthResult, error) {
	var result types.AuthResult
	err := a.caller.Call(ctx, ActionRegister, RegisterPayload{Name: name, Email: email, Password: password}, &result)
	return result, err
}
