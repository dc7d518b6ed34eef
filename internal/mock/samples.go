package mock

import "github.com/hyperengineering/portfolio/internal/types"

// SampleIdeas returns the demonstration ideas the backend is seeded with.
func SampleIdeas() []types.Idea {
	return []types.Idea{
		{
			ID:              1,
			Service:         "Consultoria de Casa Inteligente",
			Need:            "Ajuda para escolher e instalar dispositivos de casa inteligente compatíveis.",
			Cluster:         "Casa Inteligente",
			BusinessModel:   "Consultoria",
			TargetAudience:  "Proprietários de casas",
			Status:          types.StatusApproved,
			CreatorName:     "Ana",
			CreationDate:    "2023-10-01T10:00:00Z",
			Scores:          types.Scores{5, 4, 3, 5, 4},
			RevenueEstimate: 150000,
		},
		{
			ID:              2,
			Service:         "Plano de Suporte Técnico Premium",
			Need:            "Suporte técnico 24/7 para todos os eletrônicos da casa.",
			Cluster:         "Suporte Técnico",
			BusinessModel:   "Assinatura/Recorrência",
			TargetAudience:  "Famílias com muitos dispositivos",
			Status:          types.StatusEvaluation,
			CreatorName:     "Bruno",
			CreationDate:    "2023-10-02T11:30:00Z",
			Scores:          types.Scores{4, 5, 5, 4, 3},
			RevenueEstimate: 500000,
		},
		{
			ID:              3,
			Service:         "Aluguel de Equipamentos de Realidade Virtual",
			Need:            "Acesso a equipamentos de VR de ponta para eventos ou uso casual.",
			Cluster:         "Acesso Flexível",
			BusinessModel:   "Locação",
			TargetAudience:  "Gamers e planejadores de eventos",
			Status:          types.StatusEvaluation,
			CreatorName:     "Carlos",
			CreationDate:    "2023-10-03T14:00:00Z",
			Scores:          types.Scores{3, 4, 3, 4, 4},
			RevenueEstimate: 80000,
		},
	}
}
