package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func sampleRule(id string) models.AlertRule {
	return models.AlertRule{
		ID:              id,
		Name:            "Low stock",
		Metric:          "stock_level",
		Condition:       models.ConditionLessThan,
		Threshold:       10,
		Severity:        models.AlertSeverityHigh,
		Enabled:         true,
		CooldownMinutes: 15,
		Channels:        []models.AlertChannelType{models.AlertChannelEmail, models.AlertChannelInApp},
		Recipients:      []string{"ops@example.com"},
	}
}

func TestAddAndList(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))
	require.NoError(t, s.Add(sampleRule("b")))
	require.NoError(t, s.Add(sampleRule("c")))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "c", list[2].ID)
}

func TestAddRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))

	err := s.Add(sampleRule("a"))
	assert.ErrorIs(t, err, ErrDuplicateRule)
	assert.Len(t, s.List(), 1)
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))

	threshold := 25.0
	updated, ok := s.Update("a", models.UpdateRuleRequest{Threshold: &threshold})
	require.True(t, ok)

	assert.Equal(t, 25.0, updated.Threshold)
	assert.Equal(t, "Low stock", updated.Name)
	assert.Equal(t, models.ConditionLessThan, updated.Condition)
	assert.Equal(t, 15, updated.CooldownMinutes)

	stored, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 25.0, stored.Threshold)
}

func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	s := NewStore()
	name := "renamed"
	_, ok := s.Update("ghost", models.UpdateRuleRequest{Name: &name})
	assert.False(t, ok)
	assert.Empty(t, s.List())
}

func TestSetReplacesInPlace(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))
	require.NoError(t, s.Add(sampleRule("b")))

	replacement := sampleRule("a")
	replacement.Threshold = 42
	assert.True(t, s.Set(replacement))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID, "position is preserved")
	assert.Equal(t, 42.0, list[0].Threshold)

	assert.False(t, s.Set(sampleRule("ghost")))
	assert.Len(t, s.List(), 2)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))
	require.NoError(t, s.Add(sampleRule("b")))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.False(t, s.Remove("ghost"))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestReplacePreservesOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("old")))

	s.Replace([]models.AlertRule{sampleRule("x"), sampleRule("y")})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "x", list[0].ID)
	assert.Equal(t, "y", list[1].ID)
	_, ok := s.Get("old")
	assert.False(t, ok)
}

func TestListReturnsCopies(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(sampleRule("a")))

	list := s.List()
	list[0].Name = "mutated"
	list[0].Channels[0] = models.AlertChannelWebhook

	stored, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Low stock", stored.Name)
	assert.Equal(t, models.AlertChannelEmail, stored.Channels[0])
}
