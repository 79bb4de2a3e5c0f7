//go:build cgo

package external

import (
	"strings"

	"github.com/openvenues/gopostal/expand"
	"github.com/openvenues/gopostal/parser"
)

// Available reports whether the libpostal bindings were compiled in.
func Available() bool { return true }

// ExtractComponents runs libpostal over a raw address and keeps the
// labels the pipeline cares about. Coverage is the share of input
// tokens libpostal assigned to some label; callers treat low coverage
// as a weak parse.
func ExtractComponents(raw string) Components {
	opts := expand.DefaultOptions()
	opts.Languages = []string{"en"}
	exps := expand.ExpandAddress(raw, opts)
	best := raw
	if len(exps) > 0 {
		best = exps[0]
	}
	comps := parser.ParseAddress(best)
	covered, total := 0, len(strings.Fields(best))
	out := Components{}
	for _, c := range comps {
		switch c.Label {
		case "house_number":
			out.HouseNumber = c.Value
		case "road":
			out.Road = c.Value
		case "unit":
			out.Unit = c.Value
		case "level":
			out.Level = c.Value
		case "po_box":
			out.POBox = c.Value
		case "city":
			out.City = c.Value
		case "state":
			out.State = c.Value
		case "postcode":
			out.PostalCode = c.Value
		}
		covered += len(strings.Fields(c.Value))
	}
	if total > 0 {
		out.Coverage = float64(covered) / float64(total)
	}
	return out
}
