package graph

import (
	"testing"

	"github.com/mmirzaei/mizan/internal/model"
)

func testResult() *model.ReasoningResult {
	return &model.ReasoningResult{
		CaseID: "CASE-G1",
		Steps: []model.ReasoningStep{
			{Type: model.StepFact, Content: "خوانده ملک را تصرف کرده است", Confidence: 1.0},
			{Type: model.StepFact, Content: "مالک سند رسمی دارد", Confidence: 1.0},
			{Type: model.StepArticle, Content: "تحلیل ماده ۳۰۸", Confidence: 0.95, RelatedArticle: 308},
			{Type: model.StepArticle, Content: "تحلیل ماده ۳۱۱", Confidence: 0.80, RelatedArticle: 311},
			{Type: model.StepArticle, Content: "تحلیل ماده ۳۲۰", Confidence: 0.80, RelatedArticle: 320},
			{Type: model.StepDeduction, Content: "تصرف غاصبانه است", Confidence: 0.8},
			{Type: model.StepDeduction, Content: "خوانده ملزم به رد عین است", Confidence: 0.8},
		},
		Deductions:        []string{"تصرف غاصبانه است", "خوانده ملزم به رد عین است"},
		OverallConfidence: 0.85,
	}
}

func TestBuildLayerSizes(t *testing.T) {
	g := Build(testResult())

	s := g.Stats()
	if s.NumFacts != 2 || s.NumArticles != 3 || s.NumDeductions != 2 || !s.HasVerdict {
		t.Errorf("layer sizes = facts %d, articles %d, deductions %d, verdict %v; want 2/3/2/true",
			s.NumFacts, s.NumArticles, s.NumDeductions, s.HasVerdict)
	}
	if s.TotalNodes != 8 {
		t.Errorf("TotalNodes = %d, want 8", s.TotalNodes)
	}
}

func TestBuildEdgeCount(t *testing.T) {
	// Full bipartite wiring between adjacent layers:
	// facts*articles + articles*deductions + deductions*1.
	g := Build(testResult())

	want := 2*3 + 3*2 + 2
	if len(g.Edges) != want {
		t.Errorf("edge count = %d, want %d", len(g.Edges), want)
	}
}

func TestBuildExactlyOneVerdict(t *testing.T) {
	g := Build(testResult())

	verdicts := 0
	for _, n := range g.Nodes {
		if n.Type == model.StepVerdict {
			verdicts++
			if n.Confidence != 0.85 {
				t.Errorf("verdict confidence = %v, want overall 0.85", n.Confidence)
			}
		}
	}
	if verdicts != 1 {
		t.Errorf("got %d verdict nodes, want exactly 1", verdicts)
	}

	// Even an empty trace gets its verdict node.
	empty := Build(&model.ReasoningResult{OverallConfidence: 0.5})
	if len(empty.Nodes) != 1 || empty.Nodes[0].Type != model.StepVerdict {
		t.Errorf("empty trace graph = %d nodes, want the single verdict node", len(empty.Nodes))
	}
}

func TestBuildNoBackEdges(t *testing.T) {
	g := Build(testResult())

	rank := map[model.StepType]int{
		model.StepFact:      0,
		model.StepArticle:   1,
		model.StepDeduction: 2,
		model.StepVerdict:   3,
	}
	typeOf := map[string]model.StepType{}
	for _, n := range g.Nodes {
		typeOf[n.ID] = n.Type
	}

	for _, e := range g.Edges {
		src, dst := rank[typeOf[e.Source]], rank[typeOf[e.Target]]
		if dst != src+1 {
			t.Errorf("edge %s -> %s spans layers %d -> %d, want adjacent forward",
				e.Source, e.Target, src, dst)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(testResult())
	b := Build(testResult())

	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		t.Fatal("rebuild changed graph shape")
	}
	for i := range a.Nodes {
		if a.Nodes[i].ID != b.Nodes[i].ID {
			t.Errorf("node %d id %q != %q across rebuilds", i, a.Nodes[i].ID, b.Nodes[i].ID)
		}
	}
}

func TestLayers(t *testing.T) {
	g := Build(testResult())
	layers := g.Layers()

	if len(layers[model.StepFact]) != 2 {
		t.Errorf("fact layer = %d ids, want 2", len(layers[model.StepFact]))
	}
	if len(layers[model.StepVerdict]) != 1 {
		t.Errorf("verdict layer = %d ids, want 1", len(layers[model.StepVerdict]))
	}
}

func TestStatsAvgConfidence(t *testing.T) {
	g := Build(testResult())
	s := g.Stats()

	want := (1.0 + 1.0 + 0.95 + 0.80 + 0.80 + 0.8 + 0.8 + 0.85) / 8
	if diff := s.AvgConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgConfidence = %v, want %v", s.AvgConfidence, want)
	}

	if got := (&Graph{}).Stats().AvgConfidence; got != 0 {
		t.Errorf("empty graph AvgConfidence = %v, want 0", got)
	}
}
