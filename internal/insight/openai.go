package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperengineering/portfolio/internal/catalog"
	"github.com/hyperengineering/portfolio/internal/classify"
	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Generator = (*OpenAI)(nil)

// ErrEmptyCompletion is returned when the model answers with no choices or no content.
var ErrEmptyCompletion = errors.New("empty completion")

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements Generator using OpenAI chat completions.
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates a new OpenAI generator
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

// NewOpenAIWithService creates an OpenAI generator over an existing chat service.
func NewOpenAIWithService(chat ChatService, model string) *OpenAI {
	return &OpenAI{chat: chat, model: openai.ChatModel(model)}
}

// IdeaDetails asks the model to refine a raw idea title.
func (o *OpenAI) IdeaDetails(ctx context.Context, idea, criteriaSummary string, categories []string) (types.GeneratedIdea, error) {
	prompt := fmt.Sprintf(`Aja como um consultor de inovação e estratégia de negócios. Analise a ideia de serviço a seguir e refine-a com base nos critérios estratégicos:
%s

Ideia de Serviço: %q

Responda APENAS com um objeto JSON válido com as chaves "beneficio" (benefício principal para o cliente), "publico" (público-alvo mais relevante) e "modelo" (exatamente um de: %s).`,
		criteriaSummary, idea, strings.Join(categories, ", "))

	content, err := o.complete(ctx, prompt)
	if err != nil {
		return types.GeneratedIdea{}, fmt.Errorf("idea details generation failed: %w", err)
	}

	var out types.GeneratedIdea
	if err := json.Unmarshal([]byte(extractJSON(content)), &out); err != nil {
		return types.GeneratedIdea{}, fmt.Errorf("idea details generation failed: decode response: %w", err)
	}
	out.Model = classify.BusinessModel(out.Model)
	return out, nil
}

// rankInput is the subset of an idea sent for ranking.
type rankInput struct {
	ID      int    `json:"id"`
	Service string `json:"service"`
	Need    string `json:"need"`
	Cluster string `json:"cluster"`
}

// Rank asks the model to score every idea on each criterion. Entries for ids
// that were not submitted are dropped and scores are normalised.
func (o *OpenAI) Rank(ctx context.Context, ideas []types.Idea, criteria []catalog.Criterion) ([]types.Ranking, error) {
	if len(ideas) == 0 {
		return []types.Ranking{}, nil
	}

	inputs := make([]rankInput, len(ideas))
	submitted := make(map[int]bool, len(ideas))
	for i, idea := range ideas {
		inputs[i] = rankInput{ID: idea.ID, Service: idea.Service, Need: idea.Need, Cluster: idea.Cluster}
		submitted[idea.ID] = true
	}
	list, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("ranking failed: encode ideas: %w", err)
	}

	var b strings.Builder
	for i, c := range criteria {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Title, c.Description)
	}

	prompt := fmt.Sprintf(`Você é um analista de negócios sênior. Atribua a cada ideia de serviço uma nota inteira de 0 a 5 para cada um dos %d critérios de priorização, na ordem listada. Seja rigoroso e consistente.

# Critérios de Priorização:
%s
# Lista de Ideias de Serviço (JSON):
%s

Responda APENAS com um array JSON válido de objetos {"id": <número>, "scores": [<%d notas>]}.`,
		len(criteria), b.String(), list, types.CriteriaCount)

	content, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}

	var raw []types.Ranking
	if err := json.Unmarshal([]byte(extractJSON(content)), &raw); err != nil {
		return nil, fmt.Errorf("ranking failed: decode response: %w", err)
	}

	rankings := make([]types.Ranking, 0, len(raw))
	for _, r := range raw {
		if !submitted[r.ID] {
			continue
		}
		rankings = append(rankings, types.Ranking{ID: r.ID, Scores: types.NormalizeScores(r.Scores)})
	}
	return rankings, nil
}

// Answer answers a free-text question using the first ContextLimit ideas as context.
func (o *OpenAI) Answer(ctx context.Context, query string, ideas []types.Idea) (types.Insight, error) {
	sample, err := json.Marshal(LimitContext(ideas))
	if err != nil {
		return types.Insight{}, fmt.Errorf("insight failed: encode ideas: %w", err)
	}

	prompt := fmt.Sprintf(`Você é um assistente especialista em análise de negócios e portfólio de serviços. Responda à pergunta do usuário com base nos dados fornecidos e no seu conhecimento geral sobre estratégia de negócios. Formate a resposta em Markdown (use **negrito** para termos importantes e listas quando apropriado). Seja conciso e direto.

# Dados do Portfólio (Amostra):
%s

# Pergunta do Usuário:
%q`, sample, query)

	content, err := o.complete(ctx, prompt)
	if err != nil {
		return types.Insight{}, fmt.Errorf("insight failed: %w", err)
	}
	return types.Insight{Text: content, GroundingChunks: []types.GroundingChunk{}}, nil
}

// ModelName returns the chat model name
func (o *OpenAI) ModelName() string {
	return string(o.model)
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(o.model),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// extractJSON strips a markdown code fence around a JSON answer, if present.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
