package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/wellbeing"
)

var (
	ErrStorageFailure = errors.New("storage failure")
	ErrNotAuthorized  = errors.New("not authorized")
)

// ReportService computes team-level wellbeing aggregates for HR viewers.
type ReportService struct {
	analyses  AnalysisStore
	companies CompanyStore
	logger    *zap.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(analyses AnalysisStore, companies CompanyStore, logger *zap.Logger) *ReportService {
	if analyses == nil || companies == nil {
		panic("nil store provided to NewReportService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		analyses:  analyses,
		companies: companies,
		logger:    logger.Named("report-service"),
	}
}

// TeamReport returns the aggregate and per-record breakdown for the viewer's
// company. The viewer must hold the hr or admin role; employees cannot read
// team reports.
func (s *ReportService) TeamReport(ctx context.Context, viewerID string, rng *DateRange) (*TeamReport, error) {
	member, err := s.companies.FindMembership(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: no company membership", ErrNotAuthorized)
	}
	if member.Role != models.RoleHR && member.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: role %q cannot view team reports", ErrNotAuthorized, member.Role)
	}

	records, err := s.analyses.ListByCompany(ctx, member.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	report := BuildTeamReport(records, rng)

	s.logger.Info("team report computed",
		zap.String("company_id", member.CompanyID),
		zap.Int("records", report.RecordCount))

	return report, nil
}

// Stats returns admin dashboard counters. Admin role required.
func (s *ReportService) Stats(ctx context.Context, viewerID string) (*DashboardStats, error) {
	member, err := s.companies.FindMembership(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if member == nil || member.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", ErrNotAuthorized)
	}

	count, err := s.analyses.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &DashboardStats{TotalAssessments: count}, nil
}

// BuildTeamReport is a pure function of its inputs: it filters records to the
// optional inclusive date range, averages each catalog topic over records
// holding a non-null value for it, and assembles the per-record breakdown.
// Topics with no contributing record get a nil average, never zero. Averages
// are not rounded here; rounding belongs to presentation.
func BuildTeamReport(records []models.AnalysisRecord, rng *DateRange) *TeamReport {
	filtered := filterByRange(records, rng)

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range filtered {
		if rec.Analysis == nil {
			continue
		}
		for topicID, result := range rec.Analysis.DataCollectionResults {
			if result.Value == nil || !wellbeing.Known(topicID) {
				continue
			}
			totals[topicID] += *result.Value
			counts[topicID]++
		}
	}

	averages := make(map[string]TopicAverage, len(wellbeing.Topics))
	scores := make([]TopicScore, 0, len(wellbeing.Topics))
	for _, topic := range wellbeing.Topics {
		avg := TopicAverage{Contributors: counts[topic.ID]}
		if avg.Contributors > 0 {
			mean := totals[topic.ID] / float64(avg.Contributors)
			avg.Average = &mean
		}
		averages[topic.ID] = avg
		scores = append(scores, TopicScore{
			TopicID:     topic.ID,
			Title:       topic.Title,
			Score:       avg.Average,
			Description: topic.Description,
		})
	}

	reports := make([]IndividualReport, 0, len(filtered))
	for _, rec := range filtered {
		summary := ""
		if rec.Analysis != nil {
			summary = rec.Analysis.TranscriptSummary
		}
		reports = append(reports, IndividualReport{
			RecordID:       rec.ID,
			ConversationID: rec.ConversationID,
			Username:       rec.Username,
			Summary:        summary,
			Scores:         BuildScores(rec.Analysis),
			CreatedAt:      rec.CreatedAt,
		})
	}

	return &TeamReport{
		Averages:    averages,
		Scores:      scores,
		RecordCount: len(filtered),
		Range:       rng,
		Reports:     reports,
	}
}

// BuildScores renders an analysis payload against the full topic catalog in
// display order. Topics absent from the payload, or present with a null
// value, get a nil score.
func BuildScores(analysis *convai.Analysis) []TopicScore {
	scores := make([]TopicScore, 0, len(wellbeing.Topics))
	for _, topic := range wellbeing.Topics {
		score := TopicScore{
			TopicID:     topic.ID,
			Title:       topic.Title,
			Description: topic.Description,
		}
		if analysis != nil {
			if result, ok := analysis.DataCollectionResults[topic.ID]; ok {
				score.Score = result.Value
				score.Rationale = result.Rationale
			}
		}
		scores = append(scores, score)
	}
	return scores
}

func filterByRange(records []models.AnalysisRecord, rng *DateRange) []models.AnalysisRecord {
	if rng == nil {
		return records
	}
	filtered := make([]models.AnalysisRecord, 0, len(records))
	for _, rec := range records {
		if rng.Contains(rec.CreatedAt) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
