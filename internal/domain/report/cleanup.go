package report

import (
	"errors"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// Annotations the bulletins append to product names, either on a second line
// of the cell or glued to the name when the cell is rendered on one line.
var nameAnnotations = []string{
	"產地價格監控",
	"價格監控",
	"(監控品項)",
	"（監控品項）",
	"※",
	"*",
}

var errEmptyPrice = errors.New("empty price")

// nameCleaner strips annotation text from product name cells.
type nameCleaner struct {
	matcher     *ahocorasick.Matcher
	annotations []string
}

func newNameCleaner(annotations []string) *nameCleaner {
	return &nameCleaner{
		matcher:     ahocorasick.NewStringMatcher(annotations),
		annotations: annotations,
	}
}

var defaultNameCleaner = newNameCleaner(nameAnnotations)

// Clean keeps the text before the first newline and removes trailing
// annotations.
func (c *nameCleaner) Clean(raw string) string {
	name := raw
	if i := strings.IndexAny(name, "\r\n"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)

	// Annotations can stack ("香蕉※產地價格監控"), so trim the longest
	// matching suffix until none is left.
	for {
		longest := ""
		for _, idx := range c.matcher.Match([]byte(name)) {
			a := c.annotations[idx]
			if strings.HasSuffix(name, a) && len(a) > len(longest) {
				longest = a
			}
		}
		if longest == "" {
			return name
		}
		name = strings.TrimSpace(strings.TrimSuffix(name, longest))
	}
}

// CleanProductName applies the default annotation list to a name cell.
func CleanProductName(raw string) string {
	return defaultNameCleaner.Clean(raw)
}

// ParsePrice parses a price cell such as "11.1\n" or " 1,234.5 ".
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, errEmptyPrice
	}
	return decimal.NewFromString(s)
}
