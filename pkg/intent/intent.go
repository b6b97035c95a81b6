// Package intent converts free-form user queries into structured,
// filterable retrieval requests.
package intent

// Intent categories. Model output outside this set is coerced to
// CategoryGeneralQuestion.
const (
	CategoryProjectSummary    = "project_summary"
	CategoryDateSummary       = "date_summary"
	CategoryGeneralQuestion   = "general_question"
	CategoryActionItems       = "action_items"
	CategoryTopicsOverview    = "topics_overview"
	CategoryRequirementsQuery = "requirements_query"
)

// ProjectRef is a project mentioned by a query, with the model's
// confidence that the mention is a real project reference.
type ProjectRef struct {
	Alias      string  `json:"alias"`
	Confidence float64 `json:"confidence"`
}

// DateRange is a period referenced by a query. Start and End are free
// expressions, relative ("last week") or absolute ("2026-08-01").
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParsedIntent is the structured interpretation of a user query.
type ParsedIntent struct {
	Intent            string       `json:"intent"`
	Projects          []ProjectRef `json:"projects"`
	DateRanges        []DateRange  `json:"date_ranges"`
	Topics            []string     `json:"topics"`
	FollowUp          bool         `json:"follow_up"`
	Confidence        float64      `json:"confidence"`
	UncertaintyReason string       `json:"uncertainty_reason,omitempty"`
}

// Fallback is the intent substituted when parsing cannot produce a
// usable result. reason names the failure kind, "empty_response" or
// "parse_error".
func Fallback(reason string) ParsedIntent {
	return ParsedIntent{
		Intent:            CategoryGeneralQuestion,
		Projects:          []ProjectRef{},
		DateRanges:        []DateRange{},
		Topics:            []string{},
		FollowUp:          false,
		Confidence:        0,
		UncertaintyReason: reason,
	}
}

func validCategory(category string) bool {
	switch category {
	case CategoryProjectSummary, CategoryDateSummary, CategoryGeneralQuestion,
		CategoryActionItems, CategoryTopicsOverview, CategoryRequirementsQuery:
		return true
	}
	return false
}
