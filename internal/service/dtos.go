package service

import (
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
)

// DateRange is an inclusive [Start, End] window on record creation time.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, boundaries included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// TopicScore is the presentation contract for a single topic. Score is nil
// when the topic was not calculated; clients render a neutral state then, not
// zero. Rationale is empty when the remote analysis gave none, in which case
// clients fall back to Description.
type TopicScore struct {
	TopicID     string
	Title       string
	Score       *float64
	Description string
	Rationale   string
}

// TopicAverage is one topic's slot in an aggregate: the unrounded mean over
// contributing records, nil when no record scored the topic.
type TopicAverage struct {
	Average      *float64
	Contributors int
}

// TeamReport is the HR-facing aggregate over a company's submitted records.
type TeamReport struct {
	Averages    map[string]TopicAverage // keyed by topic id, every catalog topic present
	Scores      []TopicScore            // catalog order, Score = unrounded average
	RecordCount int                     // filtered records, not distinct users
	Range       *DateRange
	Reports     []IndividualReport
}

// IndividualReport is one submitted record's breakdown.
type IndividualReport struct {
	RecordID       string
	ConversationID string
	Username       string
	Summary        string
	Scores         []TopicScore
	CreatedAt      time.Time
}

// AssessmentView is a rendered conversation analysis: what the individual
// sees after their session.
type AssessmentView struct {
	ConversationID string
	Status         convai.ConversationStatus
	Summary        string
	Scores         []TopicScore
	Transcript     []convai.Turn
	Metadata       *convai.Metadata
}

// DashboardStats backs the admin dashboard counters.
type DashboardStats struct {
	TotalAssessments int64
}
