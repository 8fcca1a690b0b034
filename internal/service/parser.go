package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"comply-rag/internal/models"
)

type verdict int

const (
	verdictUnknown verdict = iota
	verdictYes
	verdictNo
	verdictInsufficient
)

// parseOutcome is what the model's raw text turned out to be. Exactly one
// of the types below implements it; ParseClassification reduces it to a
// ClassificationResult.
type parseOutcome interface {
	outcome()
}

// structuredOk is a JSON payload carrying a YES or NO verdict.
type structuredOk struct {
	verdict       verdict
	justification string
}

// insufficientData is either a structured INSUFFICIENT_DATA verdict
// (explicit) or free text containing an insufficient-data indicator.
type insufficientData struct {
	explicit bool
}

// patternExtracted is a verdict recovered from free text by label matching.
type patternExtracted struct {
	verdict       verdict
	justification string
}

type unparseable struct {
	reason string
}

func (structuredOk) outcome()     {}
func (insufficientData) outcome() {}
func (patternExtracted) outcome() {}
func (unparseable) outcome()      {}

const minPatternJustification = 20

var (
	insufficientIndicators = []string{
		"INSUFFICIENT_DATA",
		"N/A",
		"NO EVIDENCE FOUND",
		"NOT ENOUGH INFORMATION",
		"INSUFFICIENT",
		"NOT FOUND IN THE CONTEXT",
		"NO INFORMATION AVAILABLE",
	}

	noMarker        = regexp.MustCompile(`\b(NO|FALSE)\b|NOT[ _]APPLICABLE`)
	notApplicable   = regexp.MustCompile(`NOT[ _]APPLICABLE`)
	yesMarker       = regexp.MustCompile(`\b(YES|TRUE|APPLICABLE)\b`)
	codeFence       = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	applicabilityRe = regexp.MustCompile(`(?i)\b(not\s+)?(?:is[_ ]?applicable|applicability|applicable)\b\s*["']?\s*[:=\-]\s*["']?\s*(YES|NO|TRUE|FALSE|INSUFFICIENT_DATA)\b`)
	justificationRe = regexp.MustCompile(`(?i)\b(?:justification|reason|rationale)\b\s*["']?\s*[:=\-]\s*(?:"([^"]{20,})"|'([^']{20,})'|([^\r\n]{20,}))`)
)

// classifyToken maps an applicability token such as "YES", "Not applicable"
// or "INSUFFICIENT_DATA" to a verdict. Tokens carrying both affirmative and
// negative markers are verdictUnknown.
func classifyToken(token string) verdict {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return verdictUnknown
	}
	if strings.Contains(t, "INSUFFICIENT") {
		return verdictInsufficient
	}

	hasNo := noMarker.MatchString(t)
	hasYes := yesMarker.MatchString(notApplicable.ReplaceAllString(t, " "))

	switch {
	case hasNo && !hasYes:
		return verdictNo
	case hasYes && !hasNo:
		return verdictYes
	default:
		return verdictUnknown
	}
}

func stripFences(raw string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
}

// tryStructured decodes the outermost JSON object in raw. ok is false when
// there is no object or it has no applicability field.
func tryStructured(raw string) (parseOutcome, bool) {
	text := stripFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, false
	}

	var (
		value   any
		present bool
		just    string
	)
	for k, v := range payload {
		switch strings.ToLower(strings.ReplaceAll(k, "_", "")) {
		case "isapplicable", "applicable":
			value, present = v, true
		case "justification":
			if s, ok := v.(string); ok {
				just = strings.TrimSpace(s)
			}
		}
	}
	if !present {
		return nil, false
	}

	var v verdict
	switch tv := value.(type) {
	case bool:
		v = verdictNo
		if tv {
			v = verdictYes
		}
	case string:
		v = classifyToken(tv)
	}

	switch v {
	case verdictInsufficient:
		return insufficientData{explicit: true}, true
	case verdictUnknown:
		return unparseable{reason: "ambiguous applicability value"}, true
	default:
		return structuredOk{verdict: v, justification: just}, true
	}
}

func hasInsufficientIndicator(raw string) bool {
	upper := strings.ToUpper(raw)
	for _, ind := range insufficientIndicators {
		if strings.Contains(upper, ind) {
			return true
		}
	}
	return false
}

func extractJustification(raw string) string {
	m := justificationRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		g = strings.TrimSpace(strings.Trim(strings.TrimSpace(g), `"'},`))
		if len(g) >= minPatternJustification {
			return g
		}
	}
	return ""
}

// tryPattern recovers a verdict from labeled free text. All labeled
// verdicts must agree.
func tryPattern(raw string) parseOutcome {
	matches := applicabilityRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return unparseable{reason: "no applicability label"}
	}

	found := verdictUnknown
	for _, m := range matches {
		v := classifyToken(m[2])
		if m[1] != "" {
			switch v {
			case verdictYes:
				v = verdictNo
			case verdictNo:
				v = verdictYes
			}
		}
		if found != verdictUnknown && v != found {
			return unparseable{reason: "conflicting applicability labels"}
		}
		found = v
	}

	if found == verdictUnknown {
		return unparseable{reason: "unrecognized applicability value"}
	}
	return patternExtracted{verdict: found, justification: extractJustification(raw)}
}

// parseOutput tags raw model text with the first shape it matches:
// structured payload, insufficient-data indicator, labeled free text.
func parseOutput(raw string) parseOutcome {
	if strings.TrimSpace(raw) == "" {
		return unparseable{reason: "empty response"}
	}
	if o, ok := tryStructured(raw); ok {
		return o
	}
	if hasInsufficientIndicator(raw) {
		return insufficientData{}
	}
	return tryPattern(raw)
}

func safeDefault() models.ClassificationResult {
	applicable := true
	return models.ClassificationResult{IsApplicable: &applicable, Succeeded: true}
}

func notApplicableResult(justification string) models.ClassificationResult {
	applicable := false
	j := justification
	return models.ClassificationResult{IsApplicable: &applicable, Justification: &j, Succeeded: true}
}

// reduceOutcome applies the answer policy. Anything that is not a clear NO
// with a justification resolves to applicable, and a justification is only
// ever kept on a NO.
func reduceOutcome(o parseOutcome) models.ClassificationResult {
	switch v := o.(type) {
	case structuredOk:
		if v.verdict == verdictNo && v.justification != "" {
			return notApplicableResult(v.justification)
		}
	case patternExtracted:
		if v.verdict == verdictNo && len(v.justification) >= minPatternJustification {
			return notApplicableResult(v.justification)
		}
	case insufficientData:
		r := safeDefault()
		r.InsufficientData = v.explicit
		return r
	}
	return safeDefault()
}

// ParseClassification turns raw model text into a result. It never fails;
// QuestionID and SourcesUsed are left for the caller.
func ParseClassification(raw string) models.ClassificationResult {
	return reduceOutcome(parseOutput(raw))
}
