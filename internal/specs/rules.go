package specs

import (
	"strings"

	"feedsync/internal/models"
)

// Result is what a Formatter produces: either a single value (Entries nil),
// which becomes one {text, value} entry, or a complete list of entries used
// as-is.
type Result struct {
	Value   string
	Entries []models.SpecificationEntry
}

type Formatter func(feedValue string) Result

// Rule maps one feed attribute onto one canonical specification.
type Rule struct {
	FeedAttribute string
	Attribute     string
	Formatter     Formatter
	// IsVariation keeps the rule when the record is part of an item group.
	IsVariation bool
}

// DefaultRules is the attribute table used for product feeds.
func DefaultRules() []Rule {
	return []Rule{
		{FeedAttribute: "color", Attribute: "colors", IsVariation: true},
		{FeedAttribute: "size", Attribute: "size", Formatter: formatSizeList, IsVariation: true},
		{FeedAttribute: "material", Attribute: "material", IsVariation: true},
		{FeedAttribute: "pattern", Attribute: "pattern", IsVariation: true},
		{FeedAttribute: "gender", Attribute: "gender", Formatter: formatGender},
		{FeedAttribute: "age_group", Attribute: "age_group", Formatter: formatAgeGroup},
		{FeedAttribute: "size_type", Attribute: "size_type"},
		{FeedAttribute: "size_system", Attribute: "size_system", Formatter: formatUpper},
	}
}

// formatSizeList fans a "S, M, L" size chart out into one entry per size.
func formatSizeList(v string) Result {
	if !strings.Contains(v, ",") {
		return Result{Value: strings.TrimSpace(v)}
	}
	var entries []models.SpecificationEntry
	for _, size := range strings.Split(v, ",") {
		size = strings.TrimSpace(size)
		if size == "" {
			continue
		}
		entries = append(entries, models.SpecificationEntry{Text: size, Value: strings.ToLower(size)})
	}
	return Result{Entries: entries}
}

func formatGender(v string) Result {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "male", "masculino", "m":
		return Result{Value: "male"}
	case "female", "feminino", "f":
		return Result{Value: "female"}
	default:
		return Result{Value: "unisex"}
	}
}

func formatAgeGroup(v string) Result {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "newborn", "infant", "toddler", "kids", "adult":
		return Result{Value: v}
	}
	return Result{Value: "adult"}
}

func formatUpper(v string) Result {
	return Result{Value: strings.ToUpper(strings.TrimSpace(v))}
}
