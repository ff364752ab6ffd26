package repository

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QualityRadar-App/internal/domain/model"
)

func TestGenerateMockIssues(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	issues := GenerateMockIssues(50, rand.New(rand.NewSource(42)), now)
	require.Len(t, issues, 50)

	first := issues[0]
	assert.Equal(t, "issue-1", first.ID)
	assert.Equal(t, model.IssueMissingProperty, first.Type)
	assert.Equal(t, model.SeverityLow, first.Severity)
	assert.Equal(t, 60, first.Confidence)
	assert.Equal(t, "Île-de-France", first.Region)
	assert.Equal(t, "Q1000", first.WikidataID)
	assert.Equal(t, "n2000", first.OSMID)
	assert.Equal(t, "Suggestion de correction", first.Suggestion)
	assert.Equal(t, "Problème détecté #1: Description du problème de qualité des données", first.Description)

	second := issues[1]
	assert.Empty(t, second.WikidataID)
	assert.Empty(t, second.OSMID)
	assert.Empty(t, second.Suggestion)
	assert.Equal(t, model.IssueIncorrectValue, second.Type)

	assert.Equal(t, "Q1045", issues[45].WikidataID)
	assert.Equal(t, 99, issues[39].Confidence)
	assert.Equal(t, 60, issues[40].Confidence)

	for _, issue := range issues {
		assert.InDelta(t, MockCenter.Lat, issue.Coordinates.Lat, 2.5)
		assert.InDelta(t, MockCenter.Lng, issue.Coordinates.Lng, 2.5)
		assert.False(t, issue.DetectedAt.After(now))
		assert.True(t, issue.DetectedAt.After(now.Add(-7*24*time.Hour)))
	}
}

func TestGenerateMockIssues_Deterministic(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	a := GenerateMockIssues(10, rand.New(rand.NewSource(7)), now)
	b := GenerateMockIssues(10, rand.New(rand.NewSource(7)), now)
	assert.Equal(t, a, b)
}

func TestGenerateMockEvents(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	events := GenerateMockEvents(10, now)
	require.Len(t, events, 10)

	assert.Equal(t, "event-1", events[0].ID)
	assert.Equal(t, model.ActivityIssueDetected, events[0].Type)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, model.ActivityExportGenerated, events[3].Type)
	assert.Equal(t, now.Add(-9*time.Hour), events[9].Timestamp)
	assert.Equal(t, "Événement 10: Description de l'activité", events[9].Description)
}
