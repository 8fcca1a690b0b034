package main

import (
	"strings"
	"testing"
	"time"

	"comply-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSeed = `
organization:
  id: 6f1c2a0e-7d0b-4a57-9c55-4ab0a7c4c001
  name: Acme Remote
  fully_remote: true
configuration:
  framework: ISO 27001:2022
  name: Statement of Applicability
  questions:
    - control_code: A.5.15
      title: Access control
      text: Rules to control access to information shall be established.
    - control_code: A.7.1
      title: Physical security perimeters
      text: Security perimeters shall be defined and used.
evidence:
  - source_type: policy
    source_id: pol-access
    label: Access Control
    content: |
      All access requires SSO and MFA.

      Access reviews happen quarterly.
`

func TestParseSeed(t *testing.T) {
	seed, err := parseSeed([]byte(sampleSeed))
	require.NoError(t, err)

	now := time.Now()
	r, err := seed.records(now)
	require.NoError(t, err)

	assert.Equal(t, "6f1c2a0e-7d0b-4a57-9c55-4ab0a7c4c001", r.organization.ID.String())
	assert.True(t, r.organization.FullyRemote)
	require.Len(t, r.questions, 2)
	assert.Equal(t, "A.7.1", r.questions[1].ControlCode)
	assert.Equal(t, 1, r.questions[1].Position)
	assert.Equal(t, r.configuration.ID, r.questions[0].ConfigurationID)

	assert.Equal(t, 2, r.document.TotalQuestions)
	assert.Equal(t, models.DocumentStatusInProgress, r.document.Status)
	assert.Equal(t, r.organization.ID, r.document.OrganizationID)

	require.Len(t, r.chunks, 1)
	assert.Equal(t, models.SourceTypePolicy, r.chunks[0].SourceType)
	assert.Equal(t, "All access requires SSO and MFA.\n\nAccess reviews happen quarterly.", r.chunks[0].Content)
	assert.Nil(t, r.chunks[0].Embedding)
}

func TestParseSeed_Invalid(t *testing.T) {
	_, err := parseSeed([]byte("organization:\n  name: x\n"))
	assert.Error(t, err)

	bad := strings.Replace(sampleSeed, "source_type: policy", "source_type: rumor", 1)
	_, err = parseSeed([]byte(bad))
	assert.Error(t, err)

	_, err = parseSeed([]byte("::not yaml"))
	assert.Error(t, err)
}

func TestSplitContent(t *testing.T) {
	content := strings.Repeat("a", 10) + "\n\n" + strings.Repeat("b", 10) + "\n\n" + strings.Repeat("c", 30)

	parts := splitContent(content, 25)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 10)+"\n\n"+strings.Repeat("b", 10), parts[0])
	assert.Equal(t, strings.Repeat("c", 30), parts[1])

	assert.Empty(t, splitContent("  \n\n ", 25))
}
