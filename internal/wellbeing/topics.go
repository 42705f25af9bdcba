// Package wellbeing defines the fixed catalog of topics an assessment is
// scored against. The catalog is built at compile time; slice order drives
// display order everywhere topics are rendered.
package wellbeing

// Topic is a single scored wellbeing category.
type Topic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Topics lists all seven wellbeing topics in display order.
var Topics = []Topic{
	{
		ID:          "leadership",
		Title:       "Leadership",
		Description: "Evaluation of leadership skills, communication effectiveness, and ability to guide and inspire others.",
	},
	{
		ID:          "personal_growth",
		Title:       "Personal Growth",
		Description: "Assessment of self-development, learning opportunities, and career progression aspirations.",
	},
	{
		ID:          "feedback",
		Title:       "Feedback",
		Description: "Analysis of feedback reception and delivery, openness to criticism, and improvement suggestions.",
	},
	{
		ID:          "teamwork",
		Title:       "Teamwork",
		Description: "Evaluation of collaboration skills, team dynamics, and contribution to group objectives.",
	},
	{
		ID:          "motivation",
		Title:       "Motivation",
		Description: "Assessment of drive, engagement levels, and factors affecting work enthusiasm.",
	},
	{
		ID:          "psychological_safety",
		Title:       "Psychological Safety",
		Description: "Analysis of workplace comfort, ability to express opinions, and feeling of security.",
	},
	{
		ID:          "company_culture",
		Title:       "Company Culture & Practices",
		Description: "Evaluation of organizational values alignment, workplace practices, and cultural fit.",
	},
}

var topicsByID = func() map[string]Topic {
	m := make(map[string]Topic, len(Topics))
	for _, t := range Topics {
		m[t.ID] = t
	}
	return m
}()

// Lookup returns the topic with the given id. The second return value is
// false for ids outside the catalog; callers are expected to drop such keys
// rather than render them.
func Lookup(id string) (Topic, bool) {
	t, ok := topicsByID[id]
	return t, ok
}

// Known reports whether id is part of the catalog.
func Known(id string) bool {
	_, ok := topicsByID[id]
	return ok
}
