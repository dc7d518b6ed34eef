package rpc

import (
	"encoding/json"
	"errors"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/types"
)

// Request is the body POSTed to the endpoint.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the uniform success/error envelope.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Succeed wraps data in a success envelope.
func Succeed(data any) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return Fail(err)
	}
	return Response{Success: true, Data: raw}
}

// Fail wraps err in a failure envelope.
func Fail(err error) Response {
	msg := "Ocorreu um erro desconhecido na API."
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Response{Success: false, Error: msg}
}

// ErrPayloadInvalid marks a payload that does not decode into the action's type.
var ErrPayloadInvalid = errors.New("payload inválido")

// Auth carries the session token on protected payloads.
type Auth struct {
	SessionToken string `json:"sessionToken,omitempty"`
}

// AddServicePayload is the addService payload.
type AddServicePayload struct {
	Auth
	Service types.NewIdea `json:"service"`
}

// UpdateServicePayload is the updateService payload.
type UpdateServicePayload struct {
	Auth
	Service types.IdeaRow `json:"service"`
}

// BulkUpdatePayload is the bulkUpdateServices payload.
type BulkUpdatePayload struct {
	Auth
	Services []types.IdeaRow `json:"services"`
}

// DeletePayload is the deleteService payload.
type DeletePayload struct {
	Auth
	ID int `json:"id"`
}

// IdeaDetailsPayload is the getAIGeneratedIdeaDetails payload.
type IdeaDetailsPayload struct {
	Auth
	Idea                    string   `json:"idea"`
	CriteriaSummary         string   `json:"criteriaSummary"`
	BusinessModelCategories []string `json:"businessModelCategories"`
}

// RankingPayload is the getAIRanking payload.
type RankingPayload struct {
	Auth
	Services []types.Idea        `json:"services"`
	Criteria []catalog.Criterion `json:"criteria"`
}

// InsightPayload is the getAIInsight payload.
type InsightPayload struct {
	Auth
	UserQuery string       `json:"userQuery"`
	Services  []types.Idea `json:"services"`
}

// LoginPayload is the loginUser payload.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload is the registerUser payload.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
