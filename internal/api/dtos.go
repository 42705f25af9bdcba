package api

import (
	"math"
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type submitAssessmentRequest struct {
	ConversationID string `json:"conversation_id"`
}

type createCompanyRequest struct {
	Name string `json:"name"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

// topicScoreJSON renders one topic for clients. Score stays null when the
// topic was not calculated so UIs show a neutral state instead of zero.
type topicScoreJSON struct {
	TopicID       string   `json:"topic_id"`
	Title         string   `json:"title"`
	Score         *float64 `json:"score"`
	NotCalculated bool     `json:"not_calculated"`
	Description   string   `json:"description"`
	Rationale     string   `json:"rationale,omitempty"`
}

type assessmentViewJSON struct {
	ConversationID string           `json:"conversation_id"`
	Status         string           `json:"status"`
	Summary        string           `json:"summary,omitempty"`
	Scores         []topicScoreJSON `json:"scores"`
	Transcript     []convai.Turn    `json:"transcript,omitempty"`
	Metadata       *convai.Metadata `json:"metadata,omitempty"`
}

type individualReportJSON struct {
	RecordID       string           `json:"record_id"`
	ConversationID string           `json:"conversation_id"`
	Username       string           `json:"username,omitempty"`
	Summary        string           `json:"summary,omitempty"`
	Scores         []topicScoreJSON `json:"scores"`
	CreatedAt      time.Time        `json:"created_at"`
}

type topicAverageJSON struct {
	Average      *float64 `json:"average"`
	Contributors int      `json:"contributors"`
}

type teamReportJSON struct {
	Averages    map[string]topicAverageJSON `json:"averages"`
	Scores      []topicScoreJSON            `json:"scores"`
	RecordCount int                         `json:"record_count"`
	From        *time.Time                  `json:"from,omitempty"`
	To          *time.Time                  `json:"to,omitempty"`
	Reports     []individualReportJSON      `json:"reports"`
}

type memberJSON struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type companyJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type inviteJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type statsJSON struct {
	TotalAssessments int64 `json:"total_assessments"`
}

type submitResponse struct {
	RecordID       string    `json:"record_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// roundScore rounds to the nearest integer for display. Aggregation upstream
// keeps full precision; rounding happens only here at the edge.
func roundScore(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := math.Round(*v)
	return &rounded
}

func mapScores(scores []service.TopicScore, round bool) []topicScoreJSON {
	out := make([]topicScoreJSON, len(scores))
	for i, s := range scores {
		score := s.Score
		if round {
			score = roundScore(score)
		}
		out[i] = topicScoreJSON{
			TopicID:       s.TopicID,
			Title:         s.Title,
			Score:         score,
			NotCalculated: s.Score == nil,
			Description:   s.Description,
			Rationale:     s.Rationale,
		}
	}
	return out
}

func mapAssessmentView(view *service.AssessmentView) assessmentViewJSON {
	return assessmentViewJSON{
		ConversationID: view.ConversationID,
		Status:         string(view.Status),
		Summary:        view.Summary,
		Scores:         mapScores(view.Scores, false),
		Transcript:     view.Transcript,
		Metadata:       view.Metadata,
	}
}

func mapIndividualReports(reports []service.IndividualReport) []individualReportJSON {
	out := make([]individualReportJSON, len(reports))
	for i, r := range reports {
		out[i] = individualReportJSON{
			RecordID:       r.RecordID,
			ConversationID: r.ConversationID,
			Username:       r.Username,
			Summary:        r.Summary,
			Scores:         mapScores(r.Scores, false),
			CreatedAt:      r.CreatedAt,
		}
	}
	return out
}

func mapTeamReport(report *service.TeamReport) teamReportJSON {
	averages := make(map[string]topicAverageJSON, len(report.Averages))
	for topicID, avg := range report.Averages {
		averages[topicID] = topicAverageJSON{
			Average:      roundScore(avg.Average),
			Contributors: avg.Contributors,
		}
	}

	out := teamReportJSON{
		Averages:    averages,
		Scores:      mapScores(report.Scores, true),
		RecordCount: report.RecordCount,
		Reports:     mapIndividualReports(report.Reports),
	}
	if report.Range != nil {
		from, to := report.Range.Start, report.Range.End
		out.From, out.To = &from, &to
	}
	return out
}

func mapMembers(members []models.Member) []memberJSON {
	out := make([]memberJSON, len(members))
	for i, m := range members {
		out[i] = memberJSON{
			UserID:   m.UserID,
			Username: m.Username,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}
	return out
}

func mapCompany(company *models.Company) companyJSON {
	return companyJSON{
		ID:        company.ID,
		Name:      company.Name,
		CreatedAt: company.CreatedAt,
	}
}
