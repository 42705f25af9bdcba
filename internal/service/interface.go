package service

import (
	"context"
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/mailer"
	"github.com/pulsato/pulsato-server/internal/repository/models"
)

// AnalysisStore defines the persistence operations for submitted analyses.
type AnalysisStore interface {
	Insert(ctx context.Context, rec *models.AnalysisRecord) error
	ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.AnalysisRecord, error)
	CountAll(ctx context.Context) (int64, error)
}

// CompanyStore defines the persistence operations for profiles, companies,
// memberships, and invites.
type CompanyStore interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateCompany(ctx context.Context, c *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	FindMembership(ctx context.Context, userID string) (*models.Member, error)
	AddMember(ctx context.Context, companyID, userID, role string, joinedAt time.Time) error
	ListMembers(ctx context.Context, companyID string) ([]models.Member, error)
	CreateInvite(ctx context.Context, inv *models.Invite) error
	FindInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	MarkInviteAccepted(ctx context.Context, id string, at time.Time) error
}

// ConversationFetcher fetches a single remote conversation snapshot.
type ConversationFetcher interface {
	GetConversation(ctx context.Context, conversationID string) (*convai.ConversationRecord, error)
}

// AnalysisAwaiter polls a remote conversation until it is terminal.
type AnalysisAwaiter interface {
	Await(ctx context.Context, conversationID string) (*convai.ConversationRecord, error)
}

// Mailer dispatches invite email.
type Mailer interface {
	SendInvite(ctx context.Context, invite mailer.InviteEmail) error
}
