package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmirzaei/mizan/internal/corpus"
	"github.com/mmirzaei/mizan/internal/model"
)

var (
	corpusDepth    int
	corpusMatchAll bool
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the statutory corpus",
}

var corpusShowCmd = &cobra.Command{
	Use:   "show <article-number>",
	Short: "Print one article with its keywords and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, number, err := openCorpusWithNumber(args[0])
		if err != nil {
			return err
		}
		p, ok := c.ByNumber(number)
		if !ok {
			return fmt.Errorf("article %d not found in corpus", number)
		}
		printProvision(p)
		return nil
	},
}

var corpusRelatedCmd = &cobra.Command{
	Use:   "related <article-number>",
	Short: "List articles reachable through cross-references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, number, err := openCorpusWithNumber(args[0])
		if err != nil {
			return err
		}
		if _, ok := c.ByNumber(number); !ok {
			return fmt.Errorf("article %d not found in corpus", number)
		}
		related := c.Related(number, corpusDepth)
		if len(related) == 0 {
			fmt.Printf("ماده %d ارجاع مرتبطی ندارد\n", number)
			return nil
		}
		for _, p := range related {
			fmt.Printf("ماده %d: %s\n", p.Number, p.Title)
		}
		return nil
	},
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Find articles by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCorpus()
		if err != nil {
			return err
		}
		results := c.SearchKeywords(args, corpusMatchAll)
		if len(results) == 0 {
			fmt.Println("هیچ ماده‌ای یافت نشد")
			return nil
		}
		for _, p := range results {
			fmt.Printf("ماده %d: %s\n", p.Number, p.Title)
		}
		return nil
	},
}

var corpusConceptsCmd = &cobra.Command{
	Use:   "concepts [name]",
	Short: "List legal concepts, or show one definition",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCorpus()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			concept, ok := c.Concept(args[0])
			if !ok {
				return fmt.Errorf("concept %q not found", args[0])
			}
			fmt.Printf("%s: %s\n", args[0], concept.Definition)
			if len(concept.Articles) > 0 {
				fmt.Printf("مواد: %s\n", joinNumbers(concept.Articles))
			}
			return nil
		}
		names := c.Concepts()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	corpusRelatedCmd.Flags().IntVar(&corpusDepth, "depth", 1, "traversal depth")
	corpusSearchCmd.Flags().BoolVar(&corpusMatchAll, "all", false, "require every keyword to match")

	corpusCmd.AddCommand(corpusShowCmd, corpusRelatedCmd, corpusSearchCmd, corpusConceptsCmd)
	rootCmd.AddCommand(corpusCmd)
}

// openCorpus loads the corpus without touching any provider.
func openCorpus() (*corpus.Corpus, error) {
	cfg := loadConfig()
	return corpus.Load(cfg.Corpus.Path)
}

func openCorpusWithNumber(arg string) (*corpus.Corpus, int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid article number %q", arg)
	}
	c, err := openCorpus()
	if err != nil {
		return nil, 0, err
	}
	return c, number, nil
}

func printProvision(p model.Provision) {
	fmt.Printf("ماده %d: %s\n\n%s\n", p.Number, p.Title, p.Text)
	if len(p.Keywords) > 0 {
		fmt.Printf("\nکلیدواژه‌ها: %s\n", strings.Join(p.Keywords, "، "))
	}
	if p.Interpretation != "" {
		fmt.Printf("\nتفسیر: %s\n", p.Interpretation)
	}
	if len(p.RelatedArticles) > 0 {
		fmt.Printf("\nمواد مرتبط: %s\n", joinNumbers(p.RelatedArticles))
	}
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "، ")
}
