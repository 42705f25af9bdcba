package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository/models"
)

var ErrAnalysisFailed = errors.New("conversation analysis failed")

// AssessmentService runs the analysis retrieval flow and owns assessment
// submission ("send to employer").
type AssessmentService struct {
	fetcher   ConversationFetcher
	awaiter   AnalysisAwaiter
	analyses  AnalysisStore
	companies CompanyStore
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService(fetcher ConversationFetcher, awaiter AnalysisAwaiter, analyses AnalysisStore, companies CompanyStore, logger *zap.Logger) *AssessmentService {
	if fetcher == nil || awaiter == nil {
		panic("nil conversation client provided to NewAssessmentService")
	}
	if analyses == nil || companies == nil {
		panic("nil store provided to NewAssessmentService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		fetcher:   fetcher,
		awaiter:   awaiter,
		analyses:  analyses,
		companies: companies,
		logger:    logger.Named("assessment-service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

// Snapshot fetches the conversation's current remote state without waiting
// for the analysis to finish. Clients poll this while rendering the
// "analyzing" indicator.
func (s *AssessmentService) Snapshot(ctx context.Context, conversationID string) (*AssessmentView, error) {
	record, err := s.fetcher.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return viewFromRecord(record), nil
}

// AwaitAnalysis runs the retrieval flow to a terminal state: poll until the
// remote status leaves processing, then render the result. A remote status
// of error is surfaced as ErrAnalysisFailed; any fetch failure ends the flow
// with no further retries.
func (s *AssessmentService) AwaitAnalysis(ctx context.Context, conversationID string) (*AssessmentView, error) {
	record, err := s.awaiter.Await(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if record.Status == convai.StatusError {
		return nil, fmt.Errorf("%w: conversation %s", ErrAnalysisFailed, conversationID)
	}
	return viewFromRecord(record), nil
}

// Submit stores a durable copy of the conversation's analysis under the
// submitting user, stamped with their company when they have one. It waits
// for the analysis to be terminal first, so a submitted record is always
// complete. Records are write-once.
func (s *AssessmentService) Submit(ctx context.Context, userID, conversationID string) (*models.AnalysisRecord, error) {
	record, err := s.awaiter.Await(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if record.Status == convai.StatusError {
		return nil, fmt.Errorf("%w: conversation %s", ErrAnalysisFailed, conversationID)
	}

	member, err := s.companies.FindMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	companyID := ""
	if member != nil {
		companyID = member.CompanyID
	}

	now := s.now()
	stored := &models.AnalysisRecord{
		ID:             s.newID(),
		ConversationID: record.ConversationID,
		UserID:         userID,
		CompanyID:      companyID,
		Analysis:       record.Analysis,
		Transcript:     record.Transcript,
		Metadata:       &record.Metadata,
		Status:         string(record.Status),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.analyses.Insert(ctx, stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("assessment submitted",
		zap.String("record_id", stored.ID),
		zap.String("conversation_id", conversationID),
		zap.String("user_id", userID),
		zap.String("company_id", companyID))

	return stored, nil
}

// History returns the user's submitted assessments, newest first, rendered
// as individual reports.
func (s *AssessmentService) History(ctx context.Context, userID string, rng *DateRange) ([]IndividualReport, error) {
	var from, to *time.Time
	if rng != nil {
		from, to = &rng.Start, &rng.End
	}
	records, err := s.analyses.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	reports := make([]IndividualReport, 0, len(records))
	for _, rec := range records {
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
	return reports, nil
}

func viewFromRecord(record *convai.ConversationRecord) *AssessmentView {
	view := &AssessmentView{
		ConversationID: record.ConversationID,
		Status:         record.Status,
		Transcript:     record.Transcript,
		Metadata:       &record.Metadata,
		Scores:         BuildScores(record.Analysis),
	}
	if record.Analysis != nil {
		view.Summary = record.Analysis.TranscriptSummary
	}
	return view
}
