// Package classify maps free text onto the fixed business-model categories
// and total scores onto priority bands. All functions are pure.
package classify

import (
	"strings"

	"github.com/hyperengineering/portfolio/internal/catalog"
)

// Fallback is returned by BusinessModel when no rule matches.
const Fallback = "Pacote de Serviço"

type rule struct {
	category string
	keywords []string
}

// rules are evaluated in order; the first group with a matching keyword wins.
var rules = []rule{
	{"Assinatura/Recorrência", []string{"assinatura", "recorrência", "monitoramento"}},
	{"Pacote de Serviço", []string{"pacote", "instalação", "reparo", "limpeza", "serviço de instalação", "venda de produto", "armazenamento"}},
	{"Locação", []string{"locação", "crédito na compra"}},
	{"Consultoria", []string{"consultoria", "atendimento consultivo", "venda de cursos", "personal", "comissão", "experiência", "curadoria"}},
	{"Soluções B2B", []string{"b2b", "solução b2b", "pj"}},
	{"Financeiro/Benefício", []string{"financeiro", "indenização", "seguro", "oferta exclusiva"}},
}

// MatchBusinessModel returns the category for raw and whether it was
// recognised, either as an exact category or through a keyword rule.
func MatchBusinessModel(raw string) (string, bool) {
	for _, c := range catalog.BusinessModelCategories() {
		if raw == c {
			return raw, true
		}
	}

	lower := strings.ToLower(raw)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category, true
			}
		}
	}
	return Fallback, false
}

// BusinessModel normalises free text into one of the fixed categories.
// It never fails: unrecognised text maps to Fallback.
func BusinessModel(raw string) string {
	category, _ := MatchBusinessModel(raw)
	return category
}

// Band is a priority classification derived from an idea's total score.
type Band string

const (
	BandHighest Band = "Altíssima"
	BandHigh    Band = "Alta"
	BandMedium  Band = "Média"
	BandLow     Band = "Baixa"
)

// Bands returns all bands from highest to lowest.
func Bands() []Band {
	return []Band{BandHighest, BandHigh, BandMedium, BandLow}
}

// Priority classifies a total score (0..25).
func Priority(total int) Band {
	switch {
	case total >= 21:
		return BandHighest
	case total >= 16:
		return BandHigh
	case total >= 11:
		return BandMedium
	default:
		return BandLow
	}
}
