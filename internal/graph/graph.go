package graph

import (
	"fmt"

	"github.com/mmirzaei/mizan/internal/model"
)

// Node size hints by layer. Rendering convention only, nothing
// downstream depends on them semantically.
const (
	sizeFact      = 20
	sizeArticle   = 30
	sizeDeduction = 25
	sizeVerdict   = 35
)

// Node is one vertex of the reasoning graph.
type Node struct {
	ID            string         `json:"id"`
	Type          model.StepType `json:"type"`
	Label         string         `json:"label"`
	Text          string         `json:"text"`
	Confidence    float64        `json:"confidence"`
	Size          int            `json:"size"`
	ArticleNumber int            `json:"article_number,omitempty"`
}

// Edge is one directed connection between layers.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
}

// Graph is the layered DAG built from a completed reasoning trace:
// FACT → ARTICLE → DEDUCTION → VERDICT, no back or skip edges.
// Read-only after construction.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats summarizes a graph for display.
type Stats struct {
	TotalNodes    int     `json:"total_nodes"`
	TotalEdges    int     `json:"total_edges"`
	NumFacts      int     `json:"num_facts"`
	NumArticles   int     `json:"num_articles"`
	NumDeductions int     `json:"num_deductions"`
	HasVerdict    bool    `json:"has_verdict"`
	AvgConfidence float64 `json:"average_confidence"`
}

// Build constructs the reasoning graph from a result. Deterministic and
// idempotent for the same input: every fact feeds every article, every
// article feeds every deduction, every deduction feeds the one verdict.
// Fact-to-article attribution is deliberately not attempted; all facts
// are treated as jointly relevant context for each article.
func Build(result *model.ReasoningResult) *Graph {
	g := &Graph{}
	counter := 0

	nextID := func(t model.StepType) string {
		counter++
		return fmt.Sprintf("%s_%d", t, counter)
	}

	var factIDs []string
	for _, step := range result.StepsOfType(model.StepFact) {
		id := nextID(model.StepFact)
		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Type:       model.StepFact,
			Label:      "واقعیت",
			Text:       step.Content,
			Confidence: step.Confidence,
			Size:       sizeFact,
		})
		factIDs = append(factIDs, id)
	}

	var articleIDs []string
	for _, step := range result.StepsOfType(model.StepArticle) {
		id := nextID(model.StepArticle)
		g.Nodes = append(g.Nodes, Node{
			ID:            id,
			Type:          model.StepArticle,
			Label:         fmt.Sprintf("ماده %d", step.RelatedArticle),
			Text:          step.Content,
			Confidence:    step.Confidence,
			Size:          sizeArticle,
			ArticleNumber: step.RelatedArticle,
		})
		for _, factID := range factIDs {
			g.Edges = append(g.Edges, Edge{Source: factID, Target: id, Relationship: "تطبیق با"})
		}
		articleIDs = append(articleIDs, id)
	}

	var deductionIDs []string
	for i, step := range result.StepsOfType(model.StepDeduction) {
		id := nextID(model.StepDeduction)
		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Type:       model.StepDeduction,
			Label:      fmt.Sprintf("نتیجه %d", i+1),
			Text:       step.Content,
			Confidence: step.Confidence,
			Size:       sizeDeduction,
		})
		for _, articleID := range articleIDs {
			g.Edges = append(g.Edges, Edge{Source: articleID, Target: id, Relationship: "منجر به"})
		}
		deductionIDs = append(deductionIDs, id)
	}

	verdictID := nextID(model.StepVerdict)
	g.Nodes = append(g.Nodes, Node{
		ID:         verdictID,
		Type:       model.StepVerdict,
		Label:      "حکم نهایی",
		Text:       fmt.Sprintf("حکم نهایی\nاطمینان: %.0f%%", result.OverallConfidence*100),
		Confidence: result.OverallConfidence,
		Size:       sizeVerdict,
	})
	for _, deductionID := range deductionIDs {
		g.Edges = append(g.Edges, Edge{Source: deductionID, Target: verdictID, Relationship: "منتهی به"})
	}

	return g
}

// Layers groups node IDs by type for hierarchical layout.
func (g *Graph) Layers() map[model.StepType][]string {
	layers := map[model.StepType][]string{
		model.StepFact:      nil,
		model.StepArticle:   nil,
		model.StepDeduction: nil,
		model.StepVerdict:   nil,
	}
	for _, n := range g.Nodes {
		layers[n.Type] = append(layers[n.Type], n.ID)
	}
	return layers
}

// Stats computes display metrics over the graph.
func (g *Graph) Stats() Stats {
	s := Stats{
		TotalNodes: len(g.Nodes),
		TotalEdges: len(g.Edges),
	}

	var confidenceSum float64
	for _, n := range g.Nodes {
		confidenceSum += n.Confidence
		switch n.Type {
		case model.StepFact:
			s.NumFacts++
		case model.StepArticle:
			s.NumArticles++
		case model.StepDeduction:
			s.NumDeductions++
		case model.StepVerdict:
			s.HasVerdict = true
		}
	}
	s.AvgConfidence = confidenceSum / float64(max(len(g.Nodes), 1))
	return s
}
