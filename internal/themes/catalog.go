package themes

import (
	"regexp"
	"strings"
)

// Category is one weighted theme in the catalog. Patterns are regular
// expressions matched against lowercased name+symbol text and count double
// toward the theme score.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
	Weight   float64  `yaml:"weight"`
}

// Catalog holds the theme categories plus their compiled patterns.
type Catalog struct {
	Categories []Category
	compiled   map[string][]*regexp.Regexp
}

// NewCatalog compiles the category patterns. Invalid patterns are skipped
// rather than failing the whole catalog.
func NewCatalog(categories []Category) *Catalog {
	c := &Catalog{
		Categories: categories,
		compiled:   make(map[string][]*regexp.Regexp, len(categories)),
	}
	for _, cat := range categories {
		for _, p := range cat.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			c.compiled[cat.Name] = append(c.compiled[cat.Name], re)
		}
	}
	return c
}

// Default returns the built-in catalog. Weights bias toward the themes that
// historically carry meme-cycle flows.
func Default() *Catalog {
	return NewCatalog([]Category{
		{
			Name:     "animal",
			Keywords: []string{"dog", "doge", "shib", "inu", "cat", "kitty", "frog", "pepe", "bear", "bull", "ape", "monkey", "bird", "hamster", "penguin"},
			Patterns: []string{`(dog|cat|inu|pepe)e?[0-9]*$`},
			Weight:   1.2,
		},
		{
			Name:     "ai",
			Keywords: []string{"ai", "gpt", "agent", "neural", "brain", "intelligence", "bot", "llm", "machine", "deep", "singularity"},
			Patterns: []string{`\bai\b`, `gpt[0-9]*`},
			Weight:   1.5,
		},
		{
			Name:     "meme",
			Keywords: []string{"meme", "moon", "rocket", "lambo", "wojak", "chad", "based", "wagmi", "hodl", "fomo", "elon"},
			Patterns: []string{`[0-9]+x$`},
			Weight:   1.0,
		},
		{
			Name:     "food",
			Keywords: []string{"burger", "pizza", "taco", "sushi", "cake", "pancake", "banana", "donut", "coffee", "potato"},
			Weight:   0.8,
		},
		{
			Name:     "politics",
			Keywords: []string{"trump", "biden", "maga", "president", "vote", "election", "freedom", "patriot"},
			Weight:   1.1,
		},
		{
			Name:     "gaming",
			Keywords: []string{"game", "play", "quest", "guild", "pixel", "arcade", "metaverse", "nft", "loot"},
			Weight:   0.9,
		},
		{
			Name:     "finance",
			Keywords: []string{"yield", "stake", "vault", "swap", "lend", "farm", "apy", "perp", "index"},
			Weight:   0.9,
		},
		{
			Name:     "rwa",
			Keywords: []string{"gold", "estate", "bond", "treasury", "oil", "property", "asset", "real"},
			Weight:   1.0,
		},
		{
			Name:     "celebrity",
			Keywords: []string{"kanye", "drake", "messi", "ronaldo", "snoop", "celeb"},
			Weight:   0.7,
		},
		{
			Name:     "seasonal",
			Keywords: []string{"santa", "xmas", "christmas", "halloween", "easter", "summer", "newyear"},
			Weight:   0.6,
		},
	})
}

// Names lists category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// KeywordHits counts keyword occurrences of a category within text. The text
// must already be lowercased.
func (c *Catalog) KeywordHits(cat Category, text string) int {
	hits := 0
	for _, kw := range cat.Keywords {
		hits += strings.Count(text, kw)
	}
	return hits
}

// PatternHits counts regex matches of a category within text.
func (c *Catalog) PatternHits(cat Category, text string) int {
	hits := 0
	for _, re := range c.compiled[cat.Name] {
		hits += len(re.FindAllString(text, -1))
	}
	return hits
}

// HasAny reports whether any keyword of the category appears in text.
func (c *Catalog) HasAny(cat Category, text string) bool {
	for _, kw := range cat.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
