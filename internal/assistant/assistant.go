// Package assistant turns a shopper's free-text message into catalog
// filters using a fixed chain of keyword rules.
package assistant

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

// Action is what the assistant decided to do with a message.
type Action string

const (
	ActionGreet  Action = "greet"
	ActionHelp   Action = "help"
	ActionSearch Action = "search"
)

// Vocabulary is the set of known category and location values.
type Vocabulary struct {
	Categories []string
	Locations  []string
}

// Intent is the interpretation of one message. An unsatisfiable intent
// searches nothing and yields no results.
type Intent struct {
	Action        Action             `json:"action"`
	Kind          domain.Kind        `json:"kind"`
	Filters       domain.FilterState `json:"filters"`
	Unsatisfiable bool               `json:"unsatisfiable,omitempty"`
	Rules         []string           `json:"rules,omitempty"`
}

var (
	greetings  = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "sannu", "bawo", "ndewo"}
	maxWords   = []string{"under", "below", "less than", "at most", "max", "maximum", "budget"}
	minWords   = []string{"above", "over", "more than", "at least", "from"}
	fillers    = map[string]bool{"of": true, "is": true, "about": true, "around": true, "₦": true, "n": true, "ngn": true, "naira": true, ":": true}
	vendorWord = regexp.MustCompile(`\b(vendors?|stores?|shops?|sellers?)\b`)
	trimPunct  = ".,!?;:'\")("
)

// Interpret runs the rule chain over message. Rules never set free-text
// query; unknown words are ignored.
func Interpret(message string, vocab Vocabulary) Intent {
	msg := strings.ToLower(strings.TrimSpace(message))
	intent := Intent{Action: ActionSearch, Kind: domain.KindProduct, Filters: domain.Defaults()}

	if isGreeting(msg) {
		intent.Action = ActionGreet
		return intent
	}
	if msg == "" || msg == "help" || strings.Contains(msg, "what can you do") {
		intent.Action = ActionHelp
		return intent
	}

	f := &intent.Filters
	rule := func(name string) { intent.Rules = append(intent.Rules, name) }

	if amount, found, ok := boundAfter(msg, maxWords, true); found {
		if !ok {
			intent.Unsatisfiable = true
			rule("budget:unparseable")
		} else {
			f.MaxPrice = &amount
			rule("budget")
		}
	}
	if amount, found, ok := boundAfter(msg, minWords, false); found && ok {
		f.MinPrice = &amount
		rule("minimum")
	}

	if hasAny(msg, "verified", "trusted") {
		f.VerifiedOnly = true
		rule("verified")
	}
	if hasAny(msg, "in stock", "available") {
		f.InStockOnly = true
		rule("in_stock")
	}

	switch {
	case hasAny(msg, "top rated", "top-rated", "highest rated", "best"):
		f.MinRating = "4.5+"
		f.Sort = domain.SortRating
		rule("top_rated")
	case hasAny(msg, "cheapest", "cheap", "affordable", "lowest price"):
		f.Sort = domain.SortPriceLow
		rule("cheap")
	case hasAny(msg, "popular", "trending"):
		f.Sort = domain.SortPopular
		rule("popular")
	case hasAny(msg, "newest", "new", "latest"):
		f.Sort = domain.SortNewest
		rule("newest")
	}

	if c := matchVocabulary(msg, vocab.Categories); c != "" {
		f.Category = c
		rule("category")
	}
	if l := matchVocabulary(msg, vocab.Locations); l != "" {
		f.Location = l
		rule("location")
	}

	if vendorWord.MatchString(msg) {
		intent.Kind = domain.KindVendor
		rule("vendor")
	}
	return intent
}

func isGreeting(msg string) bool {
	rest := strings.Trim(msg, trimPunct+" ")
	if rest == "" {
		return false
	}
	for rest != "" {
		matched := false
		for _, g := range greetings {
			if rest == g || strings.HasPrefix(rest, g+" ") || strings.HasPrefix(rest, g+",") {
				rest = strings.TrimLeft(rest[len(g):], trimPunct+" ")
				matched = true
				break
			}
		}
		if !matched {
			return rest == "there"
		}
	}
	return true
}

// hasAny reports whether any phrase occurs in msg as whole words.
func hasAny(msg string, phrases ...string) bool {
	for _, p := range phrases {
		if wordIndex(msg, p) >= 0 {
			return true
		}
	}
	return false
}

// wordIndex finds phrase in msg bounded by non-letters, or -1.
func wordIndex(msg, phrase string) int {
	from := 0
	for {
		i := strings.Index(msg[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		if (i == 0 || !isWordByte(msg[i-1])) && (end == len(msg) || !isWordByte(msg[end])) {
			return i
		}
		from = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// boundAfter parses the amount following a keyword. found reports a
// keyword hit and ok a parseable amount. When strict, only the earliest
// keyword counts; otherwise every hit is tried in order.
func boundAfter(msg string, keywords []string, strict bool) (amount int64, found, ok bool) {
	type hit struct{ at, end int }
	var hits []hit
	for _, kw := range keywords {
		for from := 0; from < len(msg); {
			i := wordIndex(msg[from:], kw)
			if i < 0 {
				break
			}
			hits = append(hits, hit{from + i, from + i + len(kw)})
			from += i + len(kw)
		}
	}
	slices.SortFunc(hits, func(a, b hit) int { return a.at - b.at })

	for _, h := range hits {
		amount, err := amountAfter(msg[h.end:])
		if err == nil {
			return amount, true, true
		}
		if strict {
			return 0, true, false
		}
	}
	return 0, len(hits) > 0, false
}

func amountAfter(rest string) (int64, error) {
	words := strings.Fields(rest)
	for len(words) > 0 {
		w := strings.Trim(words[0], trimPunct)
		if w != "" && !fillers[w] {
			break
		}
		words = words[1:]
	}
	if len(words) == 0 {
		return 0, fmt.Errorf("no amount")
	}
	return ParseAmount(words[0])
}

// ParseAmount reads a naira amount such as "50000", "50,000", "50k",
// "₦50k" or "1.5m".
func ParseAmount(s string) (int64, error) {
	raw := s
	s = strings.ToLower(strings.Trim(s, trimPunct))
	s = strings.TrimPrefix(s, "₦")
	s = strings.TrimPrefix(s, "ngn")
	if strings.HasPrefix(s, "n") && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	}
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	n := math.Round(v * mult)
	if n >= math.MaxInt64 {
		return 0, fmt.Errorf("amount %q out of range", raw)
	}
	return int64(n), nil
}

// matchVocabulary returns the longest known value found in msg.
func matchVocabulary(msg string, values []string) string {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, func(a, b string) int { return len(b) - len(a) })
	for _, v := range sorted {
		if v != "" && wordIndex(msg, strings.ToLower(v)) >= 0 {
			return v
		}
	}
	return ""
}
