package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mmirzaei/mizan/internal/model"
)

// Corpus holds the statutory provisions and the legal-concept side
// table. It is loaded once and read-only for the process lifetime.
type Corpus struct {
	provisions []model.Provision
	byNumber   map[int]int // article number -> slice index
	concepts   map[string]model.LegalConcept
}

// document is the on-disk corpus layout.
type document struct {
	Articles      []model.Provision             `json:"articles"`
	LegalConcepts map[string]model.LegalConcept `json:"legal_concepts,omitempty"`
}

// Load reads the corpus JSON document from path.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(doc.Articles) == 0 {
		return nil, fmt.Errorf("corpus %s contains no articles", path)
	}

	return New(doc.Articles, doc.LegalConcepts), nil
}

// New builds a corpus from already-loaded provisions.
func New(provisions []model.Provision, concepts map[string]model.LegalConcept) *Corpus {
	byNumber := make(map[int]int, len(provisions))
	for i, p := range provisions {
		byNumber[p.Number] = i
	}
	if concepts == nil {
		concepts = map[string]model.LegalConcept{}
	}
	return &Corpus{
		provisions: provisions,
		byNumber:   byNumber,
		concepts:   concepts,
	}
}

// Len returns the number of provisions.
func (c *Corpus) Len() int { return len(c.provisions) }

// Provisions returns all provisions in corpus order.
func (c *Corpus) Provisions() []model.Provision {
	out := make([]model.Provision, len(c.provisions))
	copy(out, c.provisions)
	return out
}

// ByNumber returns the provision with the given article number.
func (c *Corpus) ByNumber(number int) (model.Provision, bool) {
	i, ok := c.byNumber[number]
	if !ok {
		return model.Provision{}, false
	}
	return c.provisions[i], true
}

// Related traverses related_articles breadth-first up to depth hops.
// The start provision is excluded and no provision is visited twice,
// so cycles in the adjacency are safe. depth 0 yields nothing.
func (c *Corpus) Related(number int, depth int) []model.Provision {
	type item struct {
		number int
		depth  int
	}

	visited := map[int]bool{}
	queue := []item{{number, 0}}
	var results []model.Provision

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.number] || cur.depth > depth {
			continue
		}
		visited[cur.number] = true

		p, ok := c.ByNumber(cur.number)
		if ok && cur.number != number {
			results = append(results, p)
		}
		if ok && cur.depth < depth {
			for _, rel := range p.RelatedArticles {
				if !visited[rel] {
					queue = append(queue, item{rel, cur.depth + 1})
				}
			}
		}
	}
	return results
}

// SearchKeywords returns provisions whose text contains the given
// keywords or whose keyword tags equal them exactly; matchAll requires
// every keyword to appear.
func (c *Corpus) SearchKeywords(keywords []string, matchAll bool) []model.Provision {
	var results []model.Provision

	for _, p := range c.provisions {
		text := strings.ToLower(p.Text)
		tags := make(map[string]bool, len(p.Keywords))
		for _, kw := range p.Keywords {
			tags[strings.ToLower(kw)] = true
		}

		matched := 0
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(text, kw) || tags[kw] {
				matched++
			}
		}

		if (matchAll && matched == len(keywords)) || (!matchAll && matched > 0) {
			results = append(results, p)
		}
	}
	return results
}

// Concept returns the definition of a named legal concept.
func (c *Corpus) Concept(name string) (model.LegalConcept, bool) {
	concept, ok := c.concepts[name]
	return concept, ok
}

// Concepts returns the names of all defined legal concepts.
func (c *Corpus) Concepts() []string {
	names := make([]string, 0, len(c.concepts))
	for name := range c.concepts {
		names = append(names, name)
	}
	return names
}

// searchText flattens a provision into one searchable blob: number,
// title, body, keywords and interpretation notes.
func searchText(p model.Provision) string {
	parts := []string{
		fmt.Sprintf("ماده %d: %s", p.Number, p.Title),
		p.Text,
		strings.Join(p.Keywords, " "),
		p.Interpretation,
	}
	return strings.Join(parts, " ")
}
