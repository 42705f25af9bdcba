package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service/mocks"
	"github.com/pulsato/pulsato-server/internal/wellbeing"
)

func doneRecord(conversationID string) *convai.ConversationRecord {
	return &convai.ConversationRecord{
		ConversationID: conversationID,
		Status:         convai.StatusDone,
		Transcript:     []convai.Turn{{Role: "agent", Message: "How was your week?"}},
		Metadata:       convai.Metadata{CallDurationSecs: 300},
		Analysis: &convai.Analysis{
			TranscriptSummary: "An upbeat conversation.",
			DataCollectionResults: map[string]convai.DataCollectionResult{
				"teamwork": {Value: floatPtr(88), Rationale: "collaborates well"},
			},
		},
	}
}

func newAssessmentService(client *mocks.MockConversationClient, analyses *mocks.MockAnalysisStore, companies *mocks.MockCompanyStore) *AssessmentService {
	svc := NewAssessmentService(client, client, analyses, companies, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "fixed-id" }
	return svc
}

func TestAwaitAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("renders terminal done record", func(t *testing.T) {
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return doneRecord(id), nil
			},
		}

		svc := newAssessmentService(client, &mocks.MockAnalysisStore{}, &mocks.MockCompanyStore{})
		view, err := svc.AwaitAnalysis(ctx, "conv-1")

		require.NoError(t, err)
		assert.Equal(t, convai.StatusDone, view.Status)
		assert.Equal(t, "An upbeat conversation.", view.Summary)
		assert.Len(t, view.Scores, len(wellbeing.Topics))
		assert.Len(t, view.Transcript, 1)
	})

	t.Run("error status surfaces as analysis failure", func(t *testing.T) {
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return &convai.ConversationRecord{ConversationID: id, Status: convai.StatusError}, nil
			},
		}

		svc := newAssessmentService(client, &mocks.MockAnalysisStore{}, &mocks.MockCompanyStore{})
		_, err := svc.AwaitAnalysis(ctx, "conv-1")

		assert.ErrorIs(t, err, ErrAnalysisFailed)
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return nil, convai.ErrRemoteAPI
			},
		}

		svc := newAssessmentService(client, &mocks.MockAnalysisStore{}, &mocks.MockCompanyStore{})
		_, err := svc.AwaitAnalysis(ctx, "conv-1")

		assert.ErrorIs(t, err, convai.ErrRemoteAPI)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores record stamped with company", func(t *testing.T) {
		var inserted *models.AnalysisRecord
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return doneRecord(id), nil
			},
		}
		analyses := &mocks.MockAnalysisStore{
			InsertFunc: func(ctx context.Context, rec *models.AnalysisRecord) error {
				inserted = rec
				return nil
			},
		}
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return &models.Member{CompanyID: "c1", UserID: userID, Role: models.RoleEmployee}, nil
			},
		}

		svc := newAssessmentService(client, analyses, companies)
		stored, err := svc.Submit(ctx, "u1", "conv-1")

		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, "fixed-id", stored.ID)
		assert.Equal(t, "conv-1", inserted.ConversationID)
		assert.Equal(t, "u1", inserted.UserID)
		assert.Equal(t, "c1", inserted.CompanyID)
		assert.Equal(t, "done", inserted.Status)
		require.NotNil(t, inserted.Analysis)
		assert.Equal(t, "An upbeat conversation.", inserted.Analysis.TranscriptSummary)
	})

	t.Run("user without company submits unaffiliated", func(t *testing.T) {
		var inserted *models.AnalysisRecord
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return doneRecord(id), nil
			},
		}
		analyses := &mocks.MockAnalysisStore{
			InsertFunc: func(ctx context.Context, rec *models.AnalysisRecord) error {
				inserted = rec
				return nil
			},
		}
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return nil, nil
			},
		}

		svc := newAssessmentService(client, analyses, companies)
		_, err := svc.Submit(ctx, "u1", "conv-1")

		require.NoError(t, err)
		assert.Empty(t, inserted.CompanyID)
	})

	t.Run("failed analysis is never stored", func(t *testing.T) {
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return &convai.ConversationRecord{ConversationID: id, Status: convai.StatusError}, nil
			},
		}
		analyses := &mocks.MockAnalysisStore{
			InsertFunc: func(ctx context.Context, rec *models.AnalysisRecord) error {
				t.Fatal("insert must not be called for a failed analysis")
				return nil
			},
		}

		svc := newAssessmentService(client, analyses, &mocks.MockCompanyStore{})
		_, err := svc.Submit(ctx, "u1", "conv-1")

		assert.ErrorIs(t, err, ErrAnalysisFailed)
	})

	t.Run("insert failure", func(t *testing.T) {
		client := &mocks.MockConversationClient{
			AwaitFunc: func(ctx context.Context, id string) (*convai.ConversationRecord, error) {
				return doneRecord(id), nil
			},
		}
		analyses := &mocks.MockAnalysisStore{
			InsertFunc: func(ctx context.Context, rec *models.AnalysisRecord) error {
				return errors.New("disk full")
			},
		}
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return nil, nil
			},
		}

		svc := newAssessmentService(client, analyses, companies)
		_, err := svc.Submit(ctx, "u1", "conv-1")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("maps records to reports and forwards the range", func(t *testing.T) {
		analyses := &mocks.MockAnalysisStore{
			ListByUserFunc: func(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error) {
				assert.Equal(t, "u1", userID)
				require.NotNil(t, from)
				require.NotNil(t, to)
				assert.Equal(t, base, *from)
				return []models.AnalysisRecord{
					recordWithScores("r1", base, map[string]*float64{"leadership": floatPtr(75)}),
				}, nil
			},
		}

		svc := newAssessmentService(&mocks.MockConversationClient{}, analyses, &mocks.MockCompanyStore{})
		rng := &DateRange{Start: base, End: base.Add(72 * time.Hour)}
		reports, err := svc.History(ctx, "u1", rng)

		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "r1", reports[0].RecordID)
		assert.Equal(t, "summary r1", reports[0].Summary)
		assert.Len(t, reports[0].Scores, len(wellbeing.Topics))
	})

	t.Run("nil range queries everything", func(t *testing.T) {
		analyses := &mocks.MockAnalysisStore{
			ListByUserFunc: func(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error) {
				assert.Nil(t, from)
				assert.Nil(t, to)
				return nil, nil
			},
		}

		svc := newAssessmentService(&mocks.MockConversationClient{}, analyses, &mocks.MockCompanyStore{})
		reports, err := svc.History(ctx, "u1", nil)

		require.NoError(t, err)
		assert.Empty(t, reports)
	})
}
