package assistant

import (
	"fmt"
	"strings"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
)

const (
	greetReply = "Hello! I can help you find products and vendors across the mall. " +
		"Try \"verified fashion vendors in Wuse\" or \"phones under 150k\"."
	helpReply = "Tell me what you need: a category, a location, a budget such as \"under 50k\", " +
		"or ask for top rated, cheapest, popular or newest."
	unsatisfiableReply = "I couldn't work out that budget. Try an amount like \"under 50,000\" or \"below 20k\"."
)

// Reply phrases a response to the shopper given how many listings matched.
func (i Intent) Reply(total int) string {
	switch {
	case i.Action == ActionGreet:
		return greetReply
	case i.Action == ActionHelp:
		return helpReply
	case i.Unsatisfiable:
		return unsatisfiableReply
	}

	noun := "products"
	if i.Kind == domain.KindVendor {
		noun = "vendors"
	}
	if total == 0 {
		return fmt.Sprintf("I couldn't find any %s matching that. Try widening your budget or clearing a filter.", noun)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s", total, noun)
	f := i.Filters
	if f.Category != domain.All {
		fmt.Fprintf(&b, " in %s", f.Category)
	}
	if f.Location != domain.All {
		fmt.Fprintf(&b, " around %s", f.Location)
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, " under %s", domain.FormatNaira(*f.MaxPrice))
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&b, " from %s", domain.FormatNaira(*f.MinPrice))
	}
	if f.VerifiedOnly {
		b.WriteString(", verified only")
	}
	b.WriteString(".")
	return b.String()
}
