package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// factors splits everything that moved the score into risk and quality lists,
// strongest first
func factors(components []contracts.Component, penalties, bonuses []contracts.Contribution) ([]string, []string) {
	type item struct {
		text string
		pts  float64
	}
	var risks, qualities []item

	for _, c := range components {
		switch {
		case c.Score < 0:
			risks = append(risks, item{c.Reason, c.Score})
		case c.Score > 0:
			qualities = append(qualities, item{c.Reason, c.Score})
		}
	}
	for _, p := range penalties {
		risks = append(risks, item{p.Reason, p.Points})
	}
	for _, b := range bonuses {
		qualities = append(qualities, item{b.Reason, b.Points})
	}

	sort.SliceStable(risks, func(i, j int) bool { return risks[i].pts < risks[j].pts })
	sort.SliceStable(qualities, func(i, j int) bool { return qualities[i].pts > qualities[j].pts })

	texts := func(items []item) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.text)
		}
		return out
	}
	return texts(risks), texts(qualities)
}

func explain(r *contracts.ShieldResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s scored %.1f/10 (%s).", r.Symbol, r.Direction, r.ShieldScore, r.Classification)

	if len(r.QualityFactors) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(top(r.QualityFactors, 3), "; "))
	}
	if len(r.RiskFactors) > 0 {
		fmt.Fprintf(&b, " Risks: %s.", strings.Join(top(r.RiskFactors, 3), "; "))
	}
	return b.String()
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func recommend(c contracts.Classification) string {
	switch c {
	case contracts.ClassApproved:
		return "High-quality setup. Standard position size."
	case contracts.ClassActive:
		return "Acceptable setup. Consider reduced size."
	case contracts.ClassVolatilityZone:
		return "Elevated risk. Small size with tight risk control, or wait for confirmation."
	default:
		return "Unverified setup. Skip or paper trade."
	}
}
