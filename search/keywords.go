package search

import (
	"regexp"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"

	"github.com/lexandro/bugreport-agent/language"
)

// MinKeywordRunes is the shortest token kept as a keyword.
const MinKeywordRunes = 4

// FallbackKeywordRunes is the shortest token used when no file matches the regular keywords.
const FallbackKeywordRunes = 3

// wordPattern matches runs of letters, digits and underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var (
	keywordAnalyzer  = newKeywordAnalyzer(MinKeywordRunes)
	fallbackAnalyzer = newKeywordAnalyzer(FallbackKeywordRunes)
)

// newKeywordAnalyzer tokenizes on word runs, drops short tokens, then lower-cases.
// The length filter runs first so the rune count is taken from the original text.
func newKeywordAnalyzer(minRunes int) *analysis.DefaultAnalyzer {
	return &analysis.DefaultAnalyzer{
		Tokenizer: regexptokenizer.NewRegexpTokenizer(wordPattern),
		TokenFilters: []analysis.TokenFilter{
			length.NewLengthFilter(minRunes, 0),
			lowerFilter{},
		},
	}
}

// lowerFilter folds terms with language.Lower, the same function applied to file text.
type lowerFilter struct{}

func (lowerFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, token := range input {
		token.Term = []byte(language.Lower(string(token.Term)))
	}
	return input
}

// ExtractKeywords returns the lower-cased word tokens of text that are longer
// than three characters, deduplicated in first-seen order.
func ExtractKeywords(text string) []string {
	return analyze(keywordAnalyzer, text)
}

// ExtractFallbackKeywords is ExtractKeywords with three-character tokens allowed.
func ExtractFallbackKeywords(text string) []string {
	return analyze(fallbackAnalyzer, text)
}

func analyze(analyzer *analysis.DefaultAnalyzer, text string) []string {
	tokens := analyzer.Analyze([]byte(text))

	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		term := string(token.Term)
		if seen[term] {
			continue
		}
		seen[term] = true
		keywords = append(keywords, term)
	}
	return keywords
}
