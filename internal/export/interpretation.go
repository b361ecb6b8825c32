package export

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"catma/internal/frontmatter"
	"catma/internal/interpret"
	"catma/internal/link"
)

var interpretationTmpl = template.Must(template.New("interpretation").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"seqKey": interpret.SequenceKey, "request": request}).
	Parse(interpretationText))

const interpretationText = `# {{ .Type | title }} non-conformance: {{ index .Components 0 }} -> {{ index .Components 1 }}

{{ if .Static -}}
Observed at runtime, but no code evidence was found for this link.
{{- else -}}
Code evidence exists, but the link was never observed at runtime.
{{- end }}

## Code Evidence
{{ if .LinkCodeEvidences }}
| Kind | Location | Line |
|------|----------|------|
{{- range .LinkCodeEvidences }}
| {{ .Kind }} | {{ .Location }} | {{ .Line }} |
{{- end }}
{{ else }}
_None._
{{ end }}
{{- if .Static }}
## Top Transitions
{{ if .TopTransitions }}
| Call | Request | Frequency |
|------|---------|-----------|
{{- range .TopTransitions }}
| ` + "`{{ .Label }}`" + ` | {{ request .Label }} | {{ .Frequency }} |
{{- end }}
{{ else }}
_No runtime model for this link._
{{ end }}
{{- with .LinkDynModel }}
Runtime model with code links: ` + "`{{ . }}`" + `
{{ end }}
{{- else }}
{{- if .MissingDynamicModel }}
## Missing Runtime Models

No runtime model was learned for {{ .MissingDynamicModel | join ", " }}; no call sequences were sampled.
{{ end }}
{{- if .Sampled }}
## Potential Call Sequences
{{ range .PotentialCallSequences }}
- {{ . | join " -> " }}
{{- else }}
_None sampled._
{{- end }}

## Occurred Call Sequences
{{ range $seq := .OccurredCallSequences }}
### {{ $seq | join " -> " }}
{{ $details := index $.CallDetailsSequences (seqKey $seq) }}
{{- range $details }}
- {{ . | join " | " }}
{{- else }}
_No call details recovered._
{{- end }}
{{ else }}
_None observed._
{{ end }}
{{- end }}
{{- with .SrcDynModel }}
Source model with code links: ` + "`{{ . }}`" + `
{{ end }}
{{- with .DstDynModel }}
Target model with code links: ` + "`{{ . }}`" + `
{{ end }}
{{- end }}`

// request describes the HTTP call of a transition label, e.g. "POST /pay -> 201".
// Labels without request fields render empty.
func request(label string) string {
	lb, err := link.ParseLabel(label)
	if err != nil || lb.Method == "" {
		return ""
	}
	return fmt.Sprintf("%s %s -> %s", strings.ToUpper(lb.Method), lb.DecodedPath(), lb.Status)
}

// renderInterpretation builds interpretations/<name>.md for one record.
func renderInterpretation(runID string, rec *interpret.Record) (string, error) {
	var b strings.Builder
	if err := interpretationTmpl.Execute(&b, rec); err != nil {
		return "", err
	}
	data, err := frontmatter.Write(frontmatter.Meta{
		Tags:  []string{"catma/interpretation", "non-conformance/" + rec.Type},
		RunID: runID,
		Type:  rec.Type,
		Link:  rec.Link.String(),
	}, b.String())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
