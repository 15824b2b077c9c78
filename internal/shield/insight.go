package shield

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

var insightTemplate = template.Must(template.New("insight").Funcs(template.FuncMap{
	"score":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"percent": func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	"badge":   badge,
	"bar":     bar,
}).Parse(`{{badge .Classification}} {{.Symbol}} {{.Direction}} | Shield {{score .ShieldScore}}/10
{{.Explanation}}
{{- if .Components}}

Breakdown:
{{- range .Components}}
  {{printf "%-20s" .Name}} {{bar .Score .Max}} {{printf "%+.2f" .Score}}  {{.Reason}}
{{- end}}
{{- end}}
{{- if .QualityFactors}}

Strengths:
{{- range .QualityFactors}}
  + {{.}}
{{- end}}
{{- end}}
{{- if .RiskFactors}}

Risks:
{{- range .RiskFactors}}
  - {{.}}
{{- end}}
{{- end}}

{{.Recommendation}}
Confidence {{percent .Confidence}}{{if .Version}} | v{{.Version}}{{end}}
{{- with .Personalization}}
Your history: {{.Note}} (trust {{percent .TrustScore}})
{{- end}}
`))

// RenderInsight formats a stored result for humans. Nothing is recomputed.
func RenderInsight(r *contracts.ShieldResult) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no result to render")
	}
	var buf bytes.Buffer
	if err := insightTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render insight: %w", err)
	}
	return buf.String(), nil
}

func badge(c contracts.Classification) string {
	switch c {
	case contracts.ClassApproved:
		return "[APPROVED]"
	case contracts.ClassActive:
		return "[ACTIVE]"
	case contracts.ClassVolatilityZone:
		return "[VOLATILE]"
	default:
		return "[UNVERIFIED]"
	}
}

// bar draws a 10 cell gauge of score against its ceiling
func bar(score, ceiling float64) string {
	if ceiling <= 0 {
		return strings.Repeat(".", 10)
	}
	filled := int(score / ceiling * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", 10-filled)
}
