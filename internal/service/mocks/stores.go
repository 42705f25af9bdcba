package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/mailer"
	"github.com/pulsato/pulsato-server/internal/repository/models"
)

// MockAnalysisStore is a mock implementation of the AnalysisStore interface
// for testing the service layer.
type MockAnalysisStore struct {
	InsertFunc        func(ctx context.Context, rec *models.AnalysisRecord) error
	ListByUserFunc    func(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error)
	ListByCompanyFunc func(ctx context.Context, companyID string) ([]models.AnalysisRecord, error)
	CountAllFunc      func(ctx context.Context) (int64, error)
}

func (m *MockAnalysisStore) Insert(ctx context.Context, rec *models.AnalysisRecord) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, rec)
	}
	return errors.New("InsertFunc not implemented")
}

func (m *MockAnalysisStore) ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, from, to)
	}
	return nil, errors.New("ListByUserFunc not implemented")
}

func (m *MockAnalysisStore) ListByCompany(ctx context.Context, companyID string) ([]models.AnalysisRecord, error) {
	if m.ListByCompanyFunc != nil {
		return m.ListByCompanyFunc(ctx, companyID)
	}
	return nil, errors.New("ListByCompanyFunc not implemented")
}

func (m *MockAnalysisStore) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFunc != nil {
		return m.CountAllFunc(ctx)
	}
	return 0, errors.New("CountAllFunc not implemented")
}

// MockCompanyStore is a mock implementation of the CompanyStore interface.
type MockCompanyStore struct {
	CreateProfileFunc      func(ctx context.Context, p *models.Profile) error
	FindProfileByEmailFunc func(ctx context.Context, email string) (*models.Profile, error)
	GetProfileFunc         func(ctx context.Context, id string) (*models.Profile, error)
	CreateCompanyFunc      func(ctx context.Context, c *models.Company) error
	GetCompanyFunc         func(ctx context.Context, id string) (*models.Company, error)
	FindMembershipFunc     func(ctx context.Context, userID string) (*models.Member, error)
	AddMemberFunc          func(ctx context.Context, companyID, userID, role string, joinedAt time.Time) error
	ListMembersFunc        func(ctx context.Context, companyID string) ([]models.Member, error)
	CreateInviteFunc       func(ctx context.Context, inv *models.Invite) error
	FindInviteByTokenFunc  func(ctx context.Context, token string) (*models.Invite, error)
	MarkInviteAcceptedFunc func(ctx context.Context, id string, at time.Time) error
}

func (m *MockCompanyStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	if m.CreateProfileFunc != nil {
		return m.CreateProfileFunc(ctx, p)
	}
	return errors.New("CreateProfileFunc not implemented")
}

func (m *MockCompanyStore) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if m.FindProfileByEmailFunc != nil {
		return m.FindProfileByEmailFunc(ctx, email)
	}
	return nil, errors.New("FindProfileByEmailFunc not implemented")
}

func (m *MockCompanyStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return nil, errors.New("GetProfileFunc not implemented")
}

func (m *MockCompanyStore) CreateCompany(ctx context.Context, c *models.Company) error {
	if m.CreateCompanyFunc != nil {
		return m.CreateCompanyFunc(ctx, c)
	}
	return errors.New("CreateCompanyFunc not implemented")
}

func (m *MockCompanyStore) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	if m.GetCompanyFunc != nil {
		return m.GetCompanyFunc(ctx, id)
	}
	return nil, errors.New("GetCompanyFunc not implemented")
}

func (m *MockCompanyStore) FindMembership(ctx context.Context, userID string) (*models.Member, error) {
	if m.FindMembershipFunc != nil {
		return m.FindMembershipFunc(ctx, userID)
	}
	return nil, errors.New("FindMembershipFunc not implemented")
}

func (m *MockCompanyStore) AddMember(ctx context.Context, companyID, userID, role string, joinedAt time.Time) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, companyID, userID, role, joinedAt)
	}
	return errors.New("AddMemberFunc not implemented")
}

func (m *MockCompanyStore) ListMembers(ctx context.Context, companyID string) ([]models.Member, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, companyID)
	}
	return nil, errors.New("ListMembersFunc not implemented")
}

func (m *MockCompanyStore) CreateInvite(ctx context.Context, inv *models.Invite) error {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, inv)
	}
	return errors.New("CreateInviteFunc not implemented")
}

func (m *MockCompanyStore) FindInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	if m.FindInviteByTokenFunc != nil {
		return m.FindInviteByTokenFunc(ctx, token)
	}
	return nil, errors.New("FindInviteByTokenFunc not implemented")
}

func (m *MockCompanyStore) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	if m.MarkInviteAcceptedFunc != nil {
		return m.MarkInviteAcceptedFunc(ctx, id, at)
	}
	return errors.New("MarkInviteAcceptedFunc not implemented")
}

// MockConversationClient mocks both the snapshot fetcher and the awaiter.
type MockConversationClient struct {
	GetConversationFunc func(ctx context.Context, conversationID string) (*convai.ConversationRecord, error)
	AwaitFunc           func(ctx context.Context, conversationID string) (*convai.ConversationRecord, error)
}

func (m *MockConversationClient) GetConversation(ctx context.Context, conversationID string) (*convai.ConversationRecord, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(ctx, conversationID)
	}
	return nil, errors.New("GetConversationFunc not implemented")
}

func (m *MockConversationClient) Await(ctx context.Context, conversationID string) (*convai.ConversationRecord, error) {
	if m.AwaitFunc != nil {
		return m.AwaitFunc(ctx, conversationID)
	}
	return nil, errors.New("AwaitFunc not implemented")
}

// MockMailer mocks invite email dispatch.
type MockMailer struct {
	SendInviteFunc func(ctx context.Context, invite mailer.InviteEmail) error
}

func (m *MockMailer) SendInvite(ctx context.Context, invite mailer.InviteEmail) error {
	if m.SendInviteFunc != nil {
		return m.SendInviteFunc(ctx, invite)
	}
	return errors.New("SendInviteFunc not implemented")
}
