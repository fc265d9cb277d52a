// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

// contentSnippet bounds how much of each result's content goes into a prompt.
const contentSnippet = 300

// formatEvidence renders results as cited evidence lines. Each line carries
// the result's ref so the model can cite it back.
func formatEvidence(results []types.RawResult) string {
	var b strings.Builder
	for _, r := range results {
		content := r.Content
		if len(content) > contentSnippet {
			content = content[:contentSnippet] + "..."
		}
		fmt.Fprintf(&b, "[ref %s] %s\n%s\n(%s)\n\n", r.Ref(), r.Title, content, r.URL)
	}
	return b.String()
}

// sampleContent returns the top-k results of a category for prompting.
func sampleContent(bundle types.Bundle, cat types.Category, k int) []types.RawResult {
	results := bundle[cat]
	if len(results) > k {
		results = results[:k]
	}
	return results
}

const extractSystem = "You are an expert at entity extraction and corporate intelligence analysis."

var extractPromptTmpl = template.Must(template.New("extract").Parse(`Analyze the following information about {{.Company}} and extract:

1. Key executives and their roles
2. Named incidents, scandals, or controversies
3. Timeframes attached to any negative events

Evidence:
{{.Evidence}}
Respond with a JSON object and nothing else:
{"executives": ["Name (Role)", ...], "incidents": ["...", ...], "dates": ["...", ...]}

Use empty arrays when nothing is found. Only list executives clearly identified as executives of {{.Company}}.
`))

const riskSystem = "You are an expert corporate risk analyst specializing in brand safety and reputation management."

var riskPromptTmpl = template.Must(template.New("risk").Parse(`Assess the compliance risk of {{.Company}} for brand safety purposes.

Negative indicators found:
{{if .Evidence}}{{.Evidence}}{{else}}No significant negative indicators found.
{{end}}
Deterministic keyword risk score (lawsuit/fraud/scandal/regulation weighting): {{.KeywordScore}}
{{if .Entities}}Known entities: {{.Entities}}
{{end}}
Judge:
- severity: how serious are the negative findings? one of "low", "medium", "high", "critical"
- categories: which of "scandal", "legal", "regulatory", "executive-misconduct", "pr" apply
- pattern: "isolated" incidents, a "systemic" pattern of misconduct, or "none"
- confidence: "high", "medium", or "low"

Cite evidence by the [ref ...] identifiers shown above. Never invent a ref.

Respond with a JSON object and nothing else:
{"severity": "...", "categories": ["..."], "pattern": "...", "confidence": "...", "summary": "2-3 sentence justification", "evidence_refs": ["..."]}
`))

const questionsSystem = "You are a brand safety compliance officer making critical vetting decisions."

var questionsPromptTmpl = template.Must(template.New("questions").Parse(`Based on the risk assessment of {{.Company}}, answer each compliance question.

Risk assessment:
{{.RiskSummary}}
{{if .Executives}}Known executives: {{.Executives}}
{{end}}
Evidence:
{{.Evidence}}
Questions:
{{range .Questions}}{{.ID}}. {{.Text}}
{{end}}
For each question give an answer ("yes", "no", or "maybe"), a confidence ("high", "medium", or "low"), a 2-3 sentence reasoning with specific evidence, and the supporting [ref ...] identifiers. Never invent a ref.

Respond with a JSON object and nothing else:
{"answers": [{"question_id": 1, "answer": "...", "confidence": "...", "reasoning": "...", "evidence_refs": ["..."]}, ...]}

Include exactly one entry per question, in order.
`))

const reportSystem = "You are a senior compliance officer creating executive-level reports."

var reportPromptTmpl = template.Must(template.New("report").Parse(`Write the executive summary for the vetting report on {{.Company}}.

Risk assessment:
{{.RiskSummary}}

Compliance answers:
{{.Answers}}

Be concise, professional, and actionable. 3-5 key findings.

Respond with a JSON object and nothing else:
{"executive_summary": "...", "key_findings": ["...", ...]}
`))

// renderPrompt executes a node template with its data.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
