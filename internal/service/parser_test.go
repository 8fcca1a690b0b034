package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification_StructuredNo(t *testing.T) {
	res := ParseClassification(`{"isApplicable":"NO","justification":"We operate fully remotely with no physical offices."}`)

	require.NotNil(t, res.IsApplicable)
	assert.False(t, *res.IsApplicable)
	require.NotNil(t, res.Justification)
	assert.Equal(t, "We operate fully remotely with no physical offices.", *res.Justification)
	assert.True(t, res.Succeeded)
	assert.False(t, res.InsufficientData)
}

func TestParseClassification_InsufficientDataText(t *testing.T) {
	res := ParseClassification("INSUFFICIENT_DATA")

	require.NotNil(t, res.IsApplicable)
	assert.True(t, *res.IsApplicable)
	assert.Nil(t, res.Justification)
	assert.True(t, res.Succeeded)
	assert.False(t, res.InsufficientData)
}

func TestParseClassification_Contradictory(t *testing.T) {
	raw := "Based on context, applicable: YES, not applicable: true"
	assert.IsType(t, unparseable{}, parseOutput(raw))

	res := ParseClassification(raw)
	require.NotNil(t, res.IsApplicable)
	assert.True(t, *res.IsApplicable)
	assert.Nil(t, res.Justification)
	assert.True(t, res.Succeeded)
}

func TestParseClassification_StructuredInsufficient(t *testing.T) {
	res := ParseClassification(`{"isApplicable": "INSUFFICIENT_DATA"}`)

	require.NotNil(t, res.IsApplicable)
	assert.True(t, *res.IsApplicable)
	assert.Nil(t, res.Justification)
	assert.True(t, res.InsufficientData)
}

func TestParseClassification_Shapes(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		applicable    bool
		justification string
		shape         parseOutcome
	}{
		{
			name:       "structured yes drops justification",
			raw:        `{"isApplicable":"YES","justification":"We maintain an office in Berlin."}`,
			applicable: true,
			shape:      structuredOk{},
		},
		{
			name:          "fenced json",
			raw:           "```json\n{\"isApplicable\": \"NO\", \"justification\": \"We do not develop software in-house.\"}\n```",
			applicable:    false,
			justification: "We do not develop software in-house.",
			shape:         structuredOk{},
		},
		{
			name:          "boolean value",
			raw:           `{"is_applicable": false, "justification": "We have no cardholder data environment."}`,
			applicable:    false,
			justification: "We have no cardholder data environment.",
			shape:         structuredOk{},
		},
		{
			name:       "structured no without justification",
			raw:        `{"isApplicable":"NO"}`,
			applicable: true,
			shape:      structuredOk{},
		},
		{
			name:       "structured ambiguous token",
			raw:        `{"isApplicable":"YES - NOT APPLICABLE","justification":"We are unsure about this control."}`,
			applicable: true,
			shape:      unparseable{},
		},
		{
			name:       "n/a indicator",
			raw:        "N/A - the context does not mention this.",
			applicable: true,
			shape:      insufficientData{},
		},
		{
			name:          "labeled free text",
			raw:           "Applicability: NO\nJustification: We do not operate any physical data centers ourselves.",
			applicable:    false,
			justification: "We do not operate any physical data centers ourselves.",
			shape:         patternExtracted{},
		},
		{
			name:          "truncated json",
			raw:           `{"isApplicable": "NO", "justification": "We have no on-premise servers at all."`,
			applicable:    false,
			justification: "We have no on-premise servers at all.",
			shape:         patternExtracted{},
		},
		{
			name:          "truncated json inside justification",
			raw:           `{"isApplicable": "NO", "justification": "We operate fully remotely and keep no premises at all`,
			applicable:    false,
			justification: "We operate fully remotely and keep no premises at all",
			shape:         patternExtracted{},
		},
		{
			name:       "labeled no with short justification",
			raw:        "Applicable: NO. Reason: remote",
			applicable: true,
			shape:      patternExtracted{},
		},
		{
			name:       "labeled yes",
			raw:        "Is applicable = YES because we process customer data.",
			applicable: true,
			shape:      patternExtracted{},
		},
		{
			name:       "prose",
			raw:        "I cannot help with that request.",
			applicable: true,
			shape:      unparseable{},
		},
		{
			name:       "empty",
			raw:        "   ",
			applicable: true,
			shape:      unparseable{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.shape, parseOutput(tt.raw))

			res := ParseClassification(tt.raw)
			require.NotNil(t, res.IsApplicable)
			assert.Equal(t, tt.applicable, *res.IsApplicable)
			assert.True(t, res.Succeeded)
			if tt.justification == "" {
				assert.Nil(t, res.Justification)
			} else {
				require.NotNil(t, res.Justification)
				assert.Equal(t, tt.justification, *res.Justification)
			}
		})
	}
}

func TestParseClassification_JustificationOnlyOnNo(t *testing.T) {
	inputs := []string{
		`{"isApplicable":"YES","justification":"We have offices and staff on site."}`,
		`{"isApplicable":"NO","justification":"We do not store payment card data."}`,
		`{"isApplicable":"TRUE","justification":"Applies to our production systems."}`,
		"Applicable: YES\nJustification: We run our own production network.",
		"Applicable: FALSE\nRationale: \"Our organization does not outsource development.\"",
		"NOT ENOUGH INFORMATION to answer.",
		"random words",
	}

	for _, raw := range inputs {
		res := ParseClassification(raw)
		require.NotNil(t, res.IsApplicable, raw)
		if *res.IsApplicable {
			assert.Nil(t, res.Justification, raw)
		} else {
			assert.NotNil(t, res.Justification, raw)
		}
	}
}

func TestClassifyToken(t *testing.T) {
	tests := map[string]verdict{
		"YES":                 verdictYes,
		"no":                  verdictNo,
		"True":                verdictYes,
		"false":               verdictNo,
		"Not Applicable":      verdictNo,
		"NOT_APPLICABLE":      verdictNo,
		"Applicable":          verdictYes,
		"YES, NOT APPLICABLE": verdictUnknown,
		"insufficient_data":   verdictInsufficient,
		"maybe":               verdictUnknown,
		"":                    verdictUnknown,
	}

	for token, want := range tests {
		assert.Equal(t, want, classifyToken(token), token)
	}
}
