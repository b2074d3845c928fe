package index

import (
	"regexp"
	"strings"

	"github.com/kata-shadcn/kata-registry/internal/category"
)

// minTagLength is the shortest description word kept as a tag.
const minTagLength = 3

var (
	nonWord = regexp.MustCompile(`[^a-z0-9]+`)
	numeric = regexp.MustCompile(`^[0-9]+$`)
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"their": true, "this": true, "to": true, "using": true, "via": true,
	"when": true, "which": true, "with": true, "you": true, "your": true,
	"component": true, "components": true, "block": true, "section": true,
}

// Tags derives search tags for a component: the name segment first, then up
// to max distinct description words that are not stopwords.
func Tags(name, description string, max int) []string {
	tags := []string{}
	seen := make(map[string]bool)

	if segment := strings.ToLower(category.DeriveSegment(name)); segment != "" {
		tags = append(tags, segment)
		seen[segment] = true
	}

	added := 0
	for _, word := range nonWord.Split(strings.ToLower(description), -1) {
		if added >= max {
			break
		}
		if len(word) < minTagLength || numeric.MatchString(word) || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
		added++
	}
	return tags
}
