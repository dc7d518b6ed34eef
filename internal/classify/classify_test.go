package classify

import (
	"testing"

	"github.com/hyperengineering/portfolio/internal/catalog"
)

func TestBusinessModel_ExactCategoryUnchanged(t *testing.T) {
	for _, c := range catalog.BusinessModelCategories() {
		if got := BusinessModel(c); got != c {
			t.Errorf("BusinessModel(%q) = %q, want unchanged", c, got)
		}
	}
}

func TestBusinessModel_KeywordRules(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Assinatura mensal", "Assinatura/Recorrência"},
		{"MONITORAMENTO 24h", "Assinatura/Recorrência"},
		{"Serviço de instalação avulso", "Pacote de Serviço"},
		{"Reparo sob demanda", "Pacote de Serviço"},
		{"Locação de equipamentos", "Locação"},
		{"Crédito na compra de upgrade", "Locação"},
		{"Consultoria especializada", "Consultoria"},
		{"Curadoria de produtos", "Consultoria"},
		{"Venda para PJ", "Soluções B2B"},
		{"Contrato B2B", "Soluções B2B"},
		{"Seguro residencial", "Financeiro/Benefício"},
		{"Oferta exclusiva para fãs", "Financeiro/Benefício"},
		// earlier groups win over later ones
		{"Assinatura de seguro", "Assinatura/Recorrência"},
		{"Locação com consultoria", "Locação"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := MatchBusinessModel(tt.raw)
			if !ok {
				t.Errorf("MatchBusinessModel(%q) reported no match", tt.raw)
			}
			if got != tt.want {
				t.Errorf("BusinessModel(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBusinessModel_Fallback(t *testing.T) {
	for _, raw := range []string{"", "freemium", "marketplace"} {
		got, ok := MatchBusinessModel(raw)
		if ok {
			t.Errorf("MatchBusinessModel(%q) reported a match", raw)
		}
		if got != Fallback {
			t.Errorf("BusinessModel(%q) = %q, want %q", raw, got, Fallback)
		}
	}
}

func TestBusinessModel_Deterministic(t *testing.T) {
	inputs := []string{"", "x", "Assinatura", "pj", "Soluções B2B", "ÇÃO", "seguro e assinatura"}
	for _, in := range inputs {
		first := BusinessModel(in)
		if second := BusinessModel(in); first != second {
			t.Errorf("BusinessModel(%q) not deterministic: %q then %q", in, first, second)
		}
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		total int
		want  Band
	}{
		{25, BandHighest},
		{21, BandHighest},
		{20, BandHigh},
		{16, BandHigh},
		{15, BandMedium},
		{11, BandMedium},
		{10, BandLow},
		{5, BandLow},
		{0, BandLow},
	}

	for _, tt := range tests {
		if got := Priority(tt.total); got != tt.want {
			t.Errorf("Priority(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}
