package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedsync/internal/feed"
	"feedsync/internal/models"
)

func TestMapFullTable(t *testing.T) {
	m := NewMapper(DefaultRules())
	got := m.Map(feed.NewRecord(map[string]string{
		"g:color":  "Red",
		"g:gender": "Female",
		"SIZE":     "XL",
	}))

	assert.Equal(t, models.Specifications{
		"colors": {{Text: "Red", Value: "red"}},
		"gender": {{Text: "Female", Value: "female"}},
		"size":   {{Text: "XL", Value: "xl"}},
	}, got)
}

func TestMapVariationOnlyRulesForGroupedRecord(t *testing.T) {
	m := NewMapper(DefaultRules())
	got := m.Map(feed.NewRecord(map[string]string{
		"g:item_group_id": "G1",
		"g:color":         "Blue",
		"g:gender":        "male",
	}))

	assert.Equal(t, models.Specifications{"colors": {{Text: "Blue", Value: "blue"}}}, got)
}

func TestMapGroupedFallbackLabel(t *testing.T) {
	m := NewMapper(DefaultRules())
	got := m.Map(feed.NewRecord(map[string]string{
		"g:item_group_id": "G1",
		"title":           "Shoe Blue 42",
		"g:gender":        "male",
	}))

	assert.Equal(t, models.Specifications{"label": {{Text: "Shoe Blue 42", Value: "Shoe Blue 42"}}}, got)
}

func TestMapUngroupedWithoutMatchesIsEmpty(t *testing.T) {
	m := NewMapper(DefaultRules())
	assert.Empty(t, m.Map(feed.NewRecord(map[string]string{"title": "Shoe"})))
}

func TestMapFormatterFanOut(t *testing.T) {
	m := NewMapper(DefaultRules())
	got := m.Map(feed.NewRecord(map[string]string{"g:size": "S, M ,L"}))

	assert.Equal(t, []models.SpecificationEntry{
		{Text: "S", Value: "s"},
		{Text: "M", Value: "m"},
		{Text: "L", Value: "l"},
	}, got["size"])
}

func TestMapLastWriteWins(t *testing.T) {
	m := NewMapper([]Rule{
		{FeedAttribute: "color", Attribute: "colors"},
		{FeedAttribute: "shade", Attribute: "colors"},
	})
	got := m.Map(feed.Record{
		"color": feed.Value{"Red", "Green"},
		"shade": feed.Value{"Navy"},
	})

	assert.Equal(t, []models.SpecificationEntry{{Text: "Navy", Value: "navy"}}, got["colors"])
}

func TestMapMultiValueKeepsLast(t *testing.T) {
	m := NewMapper([]Rule{{FeedAttribute: "color", Attribute: "colors"}})
	got := m.Map(feed.Record{"color": feed.Value{"Red", "Green"}})

	assert.Equal(t, []models.SpecificationEntry{{Text: "Green", Value: "green"}}, got["colors"])
}
