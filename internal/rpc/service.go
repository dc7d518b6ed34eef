package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/portfolio/internal/types"
)

// Service is the statically typed backend contract, one method per Action.
// Implemented by the mock backend; any implementation can be served over
// HTTP by internal/api or called in-process through Client.
type Service interface {
	GetServices(ctx context.Context, p Auth) ([]types.Idea, error)
	AddService(ctx context.Context, p AddServicePayload) (types.Idea, error)
	UpdateService(ctx context.Context, p UpdateServicePayload) (types.Idea, error)
	BulkUpdateServices(ctx context.Context, p BulkUpdatePayload) (types.BulkUpdateResult, error)
	DeleteService(ctx context.Context, p DeletePayload) (types.DeleteResult, error)
	GenerateIdeaDetails(ctx context.Context, p IdeaDetailsPayload) (types.GeneratedIdea, error)
	RankServices(ctx context.Context, p RankingPayload) ([]types.Ranking, error)
	Insight(ctx context.Context, p InsightPayload) (types.Insight, error)
	LoginUser(ctx context.Context, p LoginPayload) (types.AuthResult, error)
	RegisterUser(ctx context.Context, p RegisterPayload) (types.AuthResult, error)
}

// Dispatch decodes req's payload into the action's type, invokes the
// matching Service method and wraps the outcome in an envelope.
// Errors never escape as panics or transport faults.
func Dispatch(ctx context.Context, svc Service, req Request) Response {
	action, err := ParseAction(req.Action)
	if err != nil {
		return Fail(err)
	}

	var data any
	switch action {
	case ActionGetServices:
		data, err = invoke(ctx, req.Payload, svc.GetServices)
	case ActionAddService:
		data, err = invoke(ctx, req.Payload, svc.AddService)
	case ActionUpdateService:
		data, err = invoke(ctx, req.Payload, svc.UpdateService)
	case ActionBulkUpdateServices:
		data, err = invoke(ctx, req.Payload, svc.BulkUpdateServices)
	case ActionDeleteService:
		data, err = invoke(ctx, req.Payload, svc.DeleteService)
	case ActionGenerateIdeaDetails:
		data, err = invoke(ctx, req.Payload, svc.GenerateIdeaDetails)
	case ActionRanking:
		data, err = invoke(ctx, req.Payload, svc.RankServices)
	case ActionInsight:
		data, err = invoke(ctx, req.Payload, svc.Insight)
	case ActionLogin:
		data, err = invoke(ctx, req.Payload, svc.LoginUser)
	case ActionRegister:
		data, err = invoke(ctx, req.Payload, svc.RegisterUser)
	default:
		err = fmt.Errorf("ação sem handler: %s", action)
	}
	if err != nil {
		return Fail(err)
	}
	return Succeed(data)
}

func invoke[P, R any](ctx context.Context, raw json.RawMessage, fn func(context.Context, P) (R, error)) (any, error) {
	var p P
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
		}
	}
	return fn(ctx, p)
}
