package api

import (
	"context"
	"time"

	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

type AssessmentService interface {
	Snapshot(ctx context.Context, conversationID string) (*service.AssessmentView, error)
	AwaitAnalysis(ctx context.Context, conversationID string) (*service.AssessmentView, error)
	Submit(ctx context.Context, userID, conversationID string) (*models.AnalysisRecord, error)
	History(ctx context.Context, userID string, rng *service.DateRange) ([]service.IndividualReport, error)
}

type ReportService interface {
	TeamReport(ctx context.Context, viewerID string, rng *service.DateRange) (*service.TeamReport, error)
	Stats(ctx context.Context, viewerID string) (*service.DashboardStats, error)
}

type CompanyService interface {
	Create(ctx context.Context, creatorID, name string) (*models.Company, error)
	Invite(ctx context.Context, inviterID, email string) (*models.Invite, error)
	AcceptInvite(ctx context.Context, userID, token string) (*models.Company, error)
	Members(ctx context.Context, viewerID string) ([]models.Member, error)
	Membership(ctx context.Context, viewerID string) (*models.Member, error)
}
