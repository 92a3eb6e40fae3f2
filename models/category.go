package models

type CategoryFormat string

const (
	FormatKnockout      CategoryFormat = "knockout"
	FormatGroupKnockout CategoryFormat = "group_knockout"
	FormatRoundRobin    CategoryFormat = "round_robin"
)

// FormatOptions is the category configuration the engine consumes as-is from
// the registration subsystem. ScoringRules is passed through untouched.
type FormatOptions struct {
	Format          CategoryFormat `json:"format"`
	GroupCount      int            `json:"group_count,omitempty"`
	AdvancePerGroup int            `json:"advance_per_group,omitempty"`
	ThirdPlace      bool           `json:"third_place,omitempty"`
	ScoringRules    *string        `json:"scoring_rules,omitempty"`
}
