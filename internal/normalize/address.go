package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	hashUnit    = regexp.MustCompile(`#\s*(\d+)`)
	repeatUnit  = regexp.MustCompile(`\bunit(\s+unit)+\b`)
	punctuation = strings.NewReplacer(".", "", ",", " ", "#", "")
)

var directionals = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var streetTypes = map[string]string{
	"st":   "street",
	"str":  "street",
	"ave":  "avenue",
	"av":   "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"rd":   "road",
	"ln":   "lane",
	"ct":   "court",
	"cir":  "circle",
	"pl":   "place",
	"pkwy": "parkway",
	"pky":  "parkway",
	"hwy":  "highway",
	"ter":  "terrace",
	"terr": "terrace",
}

var unitDesignators = map[string]string{
	"apt":       "unit",
	"apartment": "unit",
	"ste":       "unit",
	"suite":     "unit",
	"unit":      "unit",
}

// wordTable rewrites whole words found in its map.
type wordTable struct {
	pattern *regexp.Regexp
	words   map[string]string
}

func newWordTable(words map[string]string) wordTable {
	keys := make([]string, 0, len(words))
	for k := range words {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	// longest alternatives first so "ne" is never shadowed by "n"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return wordTable{
		pattern: regexp.MustCompile(`\b(` + strings.Join(keys, "|") + `)\b`),
		words:   words,
	}
}

func (t wordTable) apply(s string) string {
	return t.pattern.ReplaceAllStringFunc(s, func(w string) string {
		return t.words[w]
	})
}

var tables = []wordTable{
	newWordTable(directionals),
	newWordTable(streetTypes),
	newWordTable(unitDesignators),
}

// Address builds the dedup key for a postal address. Two addresses that
// differ only in case, spacing, punctuation or common abbreviations yield
// the same key. The function is total and idempotent.
func Address(street, city, state, postal string) string {
	s := strings.ToLower(strings.Join([]string{street, city, state, postal}, " "))
	s = collapse(s)

	s = hashUnit.ReplaceAllString(s, " unit $1")
	s = punctuation.Replace(s)
	s = collapse(s)

	for _, t := range tables {
		s = t.apply(s)
	}

	s = repeatUnit.ReplaceAllString(s, "unit")
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
