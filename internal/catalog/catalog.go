// Package catalog holds the static reference lists the portfolio is scored
// and grouped against. Everything here is read-only.
package catalog

import (
	"fmt"
	"strings"
)

// Criterion is one of the fixed weighted scoring dimensions.
type Criterion struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ShortTitle  string   `json:"shortTitle"`
	Description string   `json:"description"`
	SubCriteria []string `json:"subCriteria"`
}

// Cluster is one of the six strategic categories an idea is assigned to.
type Cluster struct {
	ID         string   `json:"id"`
	ShortTitle string   `json:"shortTitle"`
	Title      string   `json:"title"`
	Value      string   `json:"valor"`
	Needs      []string `json:"necessidades"`
}

var criteria = []Criterion{
	{
		ID:          1,
		Title:       "Alinhamento Estratégico e Propósito da Marca",
		ShortTitle:  "Alinhamento",
		Description: "Avalia o quanto a ideia está conectada com a missão, visão e posicionamento premium da marca, reforçando sua imagem e facilitando a vida do cliente.",
		SubCriteria: []string{
			"Conexão com a Missão e Visão",
			"Posicionamento Premium",
			"Facilitação da Vida Diária",
			"Inovação e Pioneirismo",
		},
	},
	{
		ID:          2,
		Title:       "Potencial de Geração de Valor para o Cliente",
		ShortTitle:  "Valor Cliente",
		Description: "Mede a eficácia da ideia em resolver dores reais e recorrentes dos clientes, superar expectativas e oferecer soluções personalizadas.",
		SubCriteria: []string{
			"Resolução de Dores Reais",
			"Criação de Ganhos e Encantamento",
			"Personalização e Relevância",
		},
	},
	{
		ID:          3,
		Title:       "Potencial de Impacto no Faturamento e Rentabilidade",
		ShortTitle:  "Impacto Fin.",
		Description: "Analisa o potencial da ideia em gerar receita, especialmente recorrente, aumentar o ticket médio e contribuir para a margem operacional.",
		SubCriteria: []string{
			"Contribuição para a Meta de Receita em Serviços",
			"Geração de Receita Recorrente",
			"Impacto no Ticket Médio e Vendas Adicionais",
			"Rentabilidade e Eficiência",
		},
	},
	{
		ID:          4,
		Title:       "Viabilidade e Capacidade de Execução",
		ShortTitle:  "Viabilidade",
		Description: "Avalia a complexidade de implementação, os recursos necessários e o tempo estimado para o lançamento no mercado.",
		SubCriteria: []string{
			"Complexidade de Implementação",
			"Recursos Necessários",
			"Tempo para o Mercado",
		},
	},
	{
		ID:          5,
		Title:       "Diferenciação e Vantagem Competitiva",
		ShortTitle:  "Vantagem Comp.",
		Description: "Mede o grau de inovação e exclusividade da ideia frente ao mercado e como ela cria barreiras de entrada para a concorrência.",
		SubCriteria: []string{
			"Caráter Inovador e Exclusividade",
			"Alavancagem dos Atributos da Marca",
			"Defensibilidade no Mercado",
		},
	},
}

var clusters = []Cluster{
	{
		ID:         "casa-inteligente-automacao",
		ShortTitle: "Casa Inteligente",
		Title:      "1. Casa Inteligente & Automação do Lar",
		Value:      "Transformar a casa em um ecossistema proativo e inteligente, utilizando automação e IA para otimizar rotinas, aumentar a segurança, gerenciar recursos e proporcionar conveniência.",
		Needs: []string{
			"Gerenciar e automatizar tarefas diárias para liberar tempo.",
			"Monitorar e otimizar gastos de energia para economia e sustentabilidade.",
			"Garantir a segurança física da residência e a proteção contra ameaças digitais.",
			"Reabastecer consumíveis de forma programada e sem esforço.",
			"Sincronizar dispositivos para criar experiências de entretenimento imersivas.",
		},
	},
	{
		ID:         "suporte-tecnico-ciclo-vida",
		ShortTitle: "Suporte Técnico",
		Title:      "2. Suporte Técnico & Ciclo de Vida do Produto",
		Value:      "Garantir a performance, longevidade e conveniência de todos os produtos e sistemas, da instalação e configuração à manutenção preditiva e reparo.",
		Needs: []string{
			"Resolver problemas técnicos e configurar aparelhos complexos rapidamente.",
			"Evitar falhas inesperadas e custos de reparo com manutenção proativa.",
			"Encontrar especialistas para instalação e adaptação de infraestrutura.",
			"Aprender a utilizar e extrair o máximo potencial dos dispositivos.",
			"Assegurar o funcionamento contínuo e a durabilidade dos produtos.",
		},
	},
	{
		ID:         "acesso-flexivel-experiencia",
		ShortTitle: "Acesso Flexível",
		Title:      "3. Acesso Flexível & Modelos de Experiência",
		Value:      "Democratizar o acesso a tecnologias e experiências de alto valor, permitindo o uso temporário, a experimentação e o upgrade de produtos sem o alto custo da aquisição.",
		Needs: []string{
			"Utilizar itens diversos temporariamente sem o custo da compra.",
			"Experimentar produtos de alto valor antes de decidir pela aquisição.",
			"Acessar equipamentos de ponta para eventos ou usos pontuais.",
			"Renovar dispositivos tecnológicos com custo reduzido e processo simplificado.",
		},
	},
	{
		ID:         "saude-bem-estar-familiar",
		ShortTitle: "Saúde e Bem-Estar",
		Title:      "4. Saúde, Bem-Estar & Cuidado Familiar",
		Value:      "Promover um ambiente doméstico mais saudável, seguro e adaptado às necessidades de cada membro da família, através de tecnologia e serviços especializados.",
		Needs: []string{
			"Monitorar a saúde, o bem-estar e a qualidade do ambiente doméstico.",
			"Adaptar a casa para garantir a segurança e autonomia de idosos ou pessoas com necessidades especiais.",
			"Gerenciar a rotina de alimentação e segurança de animais de estimação.",
			"Criar um ambiente seguro e monitorado para bebês e crianças.",
			"Organizar e projetar ambientes para maior funcionalidade e conforto.",
		},
	},
	{
		ID:         "varejo-servicos-financeiros",
		ShortTitle: "Varejo e Finanças",
		Title:      "5. Inovação no Varejo & Serviços Financeiros",
		Value:      "Facilitar a jornada de aquisição e fidelizar clientes com soluções financeiras, programas de troca e experiências de engajamento.",
		Needs: []string{
			"Acesso a crédito, parcelamento flexível ou consórcio para compras de alto valor.",
			"Garantir vantagens exclusivas e acesso prioritário a lançamentos.",
			"Testar jogos e equipamentos em um ambiente imersivo e social.",
			"Simplificar o processo de presentear amigos e familiares.",
		},
	},
	{
		ID:         "infraestrutura-parcerias-b2b",
		ShortTitle: "Infra & B2B",
		Title:      "6. Infraestrutura & Parcerias (B2B/B2B2C)",
		Value:      "Construir a base tecnológica para um lar conectado e oferecer soluções robustas para o mercado corporativo, garantindo conectividade, energia e uma rede de parceiros qualificados.",
		Needs: []string{
			"Garantir uma rede de internet estável e eficiente para múltiplos dispositivos.",
			"Encontrar e contratar profissionais qualificados para serviços complexos.",
			"Atender às demandas tecnológicas e de serviços de clientes empresariais.",
			"Solucionar necessidades de infraestrutura para mobilidade elétrica.",
		},
	},
}

var businessModelCategories = []string{
	"Assinatura/Recorrência",
	"Pacote de Serviço",
	"Locação",
	"Consultoria",
	"Soluções B2B",
	"Financeiro/Benefício",
}

// Criteria returns a copy of the scoring criteria in score order.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	for i, c := range criteria {
		c.SubCriteria = append([]string(nil), c.SubCriteria...)
		out[i] = c
	}
	return out
}

// Clusters returns a copy of the cluster catalog.
func Clusters() []Cluster {
	out := make([]Cluster, len(clusters))
	for i, c := range clusters {
		c.Needs = append([]string(nil), c.Needs...)
		out[i] = c
	}
	return out
}

// BusinessModelCategories returns the fixed business-model categories.
func BusinessModelCategories() []string {
	return append([]string(nil), businessModelCategories...)
}

// FindCluster resolves a cluster by id, short title or full title,
// ignoring case and surrounding whitespace.
func FindCluster(label string) (Cluster, bool) {
	label = strings.TrimSpace(label)
	for _, c := range clusters {
		if strings.EqualFold(label, c.ID) || strings.EqualFold(label, c.ShortTitle) || strings.EqualFold(label, c.Title) {
			return c, true
		}
	}
	return Cluster{}, false
}

// CriteriaSummary renders the numbered criteria list sent along with AI requests.
func CriteriaSummary() string {
	var b strings.Builder
	for _, c := range criteria {
		fmt.Fprintf(&b, "%d. %s: %s\n", c.ID, c.Title, c.Description)
	}
	return b.String()
}
