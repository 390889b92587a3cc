// Package specs turns feed attributes into canonical product specifications.
package specs

import (
	"strings"

	"feedsync/internal/feed"
	"feedsync/internal/models"
)

type Mapper struct {
	rules []Rule
}

func NewMapper(rules []Rule) *Mapper {
	return &Mapper{rules: rules}
}

// Map builds the specification set for one record. Records that belong to an
// item group only use variation rules and always end up with at least a
// label specification.
func (m *Mapper) Map(record feed.Record) models.Specifications {
	specifications := models.Specifications{}
	grouped := feed.Get("item_group_id", record) != ""

	for _, rule := range m.rules {
		if grouped && !rule.IsVariation {
			continue
		}
		for _, value := range feed.Resolve(rule.FeedAttribute, record) {
			if value == "" {
				continue
			}
			result := Result{Value: value}
			if rule.Formatter != nil {
				result = rule.Formatter(value)
			}
			if result.Entries != nil {
				specifications[rule.Attribute] = result.Entries
				continue
			}
			specifications[rule.Attribute] = []models.SpecificationEntry{{
				Text:  value,
				Value: strings.ToLower(result.Value),
			}}
		}
	}

	if grouped && len(specifications) == 0 {
		title := feed.Get("title", record)
		specifications["label"] = []models.SpecificationEntry{{Text: title, Value: title}}
	}
	return specifications
}
