// Package mocks provides function-based mocks for the HTTP handler layer.
package mocks

import (
	"context"
	"errors"

	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service"
)

type MockAuthService struct {
	SignupFunc func(ctx context.Context, username, email, password string) (*service.AuthResult, error)
	LoginFunc  func(ctx context.Context, email, password string) (*service.AuthResult, error)
}

func (m *MockAuthService) Signup(ctx context.Context, username, email, password string) (*service.AuthResult, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, username, email, password)
	}
	return nil, errors.New("SignupFunc not implemented")
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errors.New("LoginFunc not implemented")
}

type MockAssessmentService struct {
	SnapshotFunc      func(ctx context.Context, conversationID string) (*service.AssessmentView, error)
	AwaitAnalysisFunc func(ctx context.Context, conversationID string) (*service.AssessmentView, error)
	SubmitFunc        func(ctx context.Context, userID, conversationID string) (*models.AnalysisRecord, error)
	HistoryFunc       func(ctx context.Context, userID string, rng *service.DateRange) ([]service.IndividualReport, error)
}

func (m *MockAssessmentService) Snapshot(ctx context.Context, conversationID string) (*service.AssessmentView, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, conversationID)
	}
	return nil, errors.New("SnapshotFunc not implemented")
}

func (m *MockAssessmentService) AwaitAnalysis(ctx context.Context, conversationID string) (*service.AssessmentView, error) {
	if m.AwaitAnalysisFunc != nil {
		return m.AwaitAnalysisFunc(ctx, conversationID)
	}
	return nil, errors.New("AwaitAnalysisFunc not implemented")
}

func (m *MockAssessmentService) Submit(ctx context.Context, userID, conversationID string) (*models.AnalysisRecord, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, userID, conversationID)
	}
	return nil, errors.New("SubmitFunc not implemented")
}

func (m *MockAssessmentService) History(ctx context.Context, userID string, rng *service.DateRange) ([]service.IndividualReport, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, rng)
	}
	return nil, errors.New("HistoryFunc not implemented")
}

type MockReportService struct {
	TeamReportFunc func(ctx context.Context, viewerID string, rng *service.DateRange) (*service.TeamReport, error)
	StatsFunc      func(ctx context.Context, viewerID string) (*service.DashboardStats, error)
}

func (m *MockReportService) TeamReport(ctx context.Context, viewerID string, rng *service.DateRange) (*service.TeamReport, error) {
	if m.TeamReportFunc != nil {
		return m.TeamReportFunc(ctx, viewerID, rng)
	}
	return nil, errors.New("TeamReportFunc not implemented")
}

func (m *MockReportService) Stats(ctx context.Context, viewerID string) (*service.DashboardStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, viewerID)
	}
	return nil, errors.New("StatsFunc not implemented")
}

type MockCompanyService struct {
	CreateFunc       func(ctx context.Context, creatorID, name string) (*models.Company, error)
	InviteFunc       func(ctx context.Context, inviterID, email string) (*models.Invite, error)
	AcceptInviteFunc func(ctx context.Context, userID, token string) (*models.Company, error)
	MembersFunc      func(ctx context.Context, viewerID string) ([]models.Member, error)
	MembershipFunc   func(ctx context.Context, viewerID string) (*models.Member, error)
}

func (m *MockCompanyService) Create(ctx context.Context, creatorID, name string) (*models.Company, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorID, name)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *MockCompanyService) Invite(ctx context.Context, inviterID, email string) (*models.Invite, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, inviterID, email)
	}
	return nil, errors.New("InviteFunc not implemented")
}

func (m *MockCompanyService) AcceptInvite(ctx context.Context, userID, token string) (*models.Company, error) {
	if m.AcceptInviteFunc != nil {
		return m.AcceptInviteFunc(ctx, userID, token)
	}
	return nil, errors.New("AcceptInviteFunc not implemented")
}

func (m *MockCompanyService) Members(ctx context.Context, viewerID string) ([]models.Member, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx, viewerID)
	}
	return nil, errors.New("MembersFunc not implemented")
}

func (m *MockCompanyService) Membership(ctx context.Context, viewerID string) (*models.Member, error) {
	if m.MembershipFunc != nil {
		return m.MembershipFunc(ctx, viewerID)
	}
	return nil, errors.New("MembershipFunc not implemented")
}
