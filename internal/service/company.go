package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/mailer"
	"github.com/pulsato/pulsato-server/internal/repository/models"
)

var (
	ErrInviteExpired  = errors.New("invite expired")
	ErrInviteAccepted = errors.New("invite already accepted")
	ErrAlreadyMember  = errors.New("user already belongs to a company")
)

const inviteValidity = 7 * 24 * time.Hour

// CompanyService manages companies, memberships, and invitations.
type CompanyService struct {
	companies CompanyStore
	mail      Mailer
	appURL    string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewCompanyService creates a new CompanyService. appURL is the public base
// URL invite links point at.
func NewCompanyService(companies CompanyStore, mail Mailer, appURL string, logger *zap.Logger) *CompanyService {
	if companies == nil {
		panic("nil store provided to NewCompanyService")
	}
	if mail == nil {
		panic("nil mailer provided to NewCompanyService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{
		companies: companies,
		mail:      mail,
		appURL:    strings.TrimRight(appURL, "/"),
		logger:    logger.Named("company-service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

// Create sets up a company with the creator as its admin. A user can belong
// to one company at a time.
func (s *CompanyService) Create(ctx context.Context, creatorID, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}

	existing, err := s.companies.FindMembership(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	company := &models.Company{
		ID:        s.newID(),
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: s.now(),
	}
	if err := s.companies.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID),
		zap.String("created_by", creatorID))
	return company, nil
}

// Invite creates a single-use invitation to the inviter's company and
// dispatches the invite email. Admin or HR role required. Email delivery is
// not retried; a failure is reported to the caller once.
func (s *CompanyService) Invite(ctx context.Context, inviterID, email string) (*models.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: invite email is required", ErrInvalidInput)
	}

	member, err := s.companies.FindMembership(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if member == nil || (member.Role != models.RoleAdmin && member.Role != models.RoleHR) {
		return nil, fmt.Errorf("%w: admin or hr role required to invite", ErrNotAuthorized)
	}

	company, err := s.companies.GetCompany(ctx, member.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	now := s.now()
	invite := &models.Invite{
		ID:        s.newID(),
		CompanyID: company.ID,
		Email:     email,
		Token:     s.newID(),
		ExpiresAt: now.Add(inviteValidity),
		CreatedAt: now,
	}
	if err := s.companies.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	inviteLink := fmt.Sprintf("%s/auth?invite=%s", s.appURL, invite.Token)
	if err := s.mail.SendInvite(ctx, mailer.InviteEmail{
		Email:       email,
		CompanyName: company.Name,
		InviteLink:  inviteLink,
	}); err != nil {
		return nil, fmt.Errorf("send invite email: %w", err)
	}

	s.logger.Info("invite sent",
		zap.String("company_id", company.ID),
		zap.String("email", email))
	return invite, nil
}

// AcceptInvite joins the user to the invite's company as an employee. The
// token must be unexpired and unused.
func (s *CompanyService) AcceptInvite(ctx context.Context, userID, token string) (*models.Company, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: invite token is required", ErrInvalidInput)
	}

	invite, err := s.companies.FindInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if invite.AcceptedAt != nil {
		return nil, ErrInviteAccepted
	}
	if now.After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	existing, err := s.companies.FindMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	if err := s.companies.AddMember(ctx, invite.CompanyID, userID, models.RoleEmployee, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := s.companies.MarkInviteAccepted(ctx, invite.ID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	company, err := s.companies.GetCompany(ctx, invite.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("invite accepted",
		zap.String("company_id", company.ID),
		zap.String("user_id", userID))
	return company, nil
}

// Members lists the viewer's company members. Any member may view the list.
func (s *CompanyService) Members(ctx context.Context, viewerID string) ([]models.Member, error) {
	member, err := s.companies.FindMembership(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: no company membership", ErrNotAuthorized)
	}

	members, err := s.companies.ListMembers(ctx, member.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return members, nil
}

// Membership returns the viewer's membership, or nil when unaffiliated.
func (s *CompanyService) Membership(ctx context.Context, viewerID string) (*models.Member, error) {
	member, err := s.companies.FindMembership(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return member, nil
}
