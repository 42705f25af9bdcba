package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsato/pulsato-server/internal/mailer"
	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service/mocks"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newCompanyService(companies *mocks.MockCompanyStore, mail *mocks.MockMailer) *CompanyService {
	svc := NewCompanyService(companies, mail, "https://app.pulsato.test/", zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ids := []string{"id-1", "id-2", "id-3"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return svc
}

func TestCompanyCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates company for unaffiliated user", func(t *testing.T) {
		var created *models.Company
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) { return nil, nil },
			CreateCompanyFunc: func(ctx context.Context, c *models.Company) error {
				created = c
				return nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		company, err := svc.Create(ctx, "u1", "  Acme  ")

		require.NoError(t, err)
		assert.Equal(t, "Acme", company.Name)
		assert.Equal(t, "u1", created.CreatedBy)
	})

	t.Run("empty name is rejected before any write", func(t *testing.T) {
		svc := newCompanyService(&mocks.MockCompanyStore{}, &mocks.MockMailer{})
		_, err := svc.Create(ctx, "u1", "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("existing member cannot create another company", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return &models.Member{CompanyID: "c1", UserID: userID, Role: models.RoleAdmin}, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		_, err := svc.Create(ctx, "u1", "Second Co")

		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestCompanyInvite(t *testing.T) {
	ctx := context.Background()

	adminStore := func(created **models.Invite) *mocks.MockCompanyStore {
		return &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return &models.Member{CompanyID: "c1", UserID: userID, Role: models.RoleAdmin}, nil
			},
			GetCompanyFunc: func(ctx context.Context, id string) (*models.Company, error) {
				return &models.Company{ID: "c1", Name: "Acme"}, nil
			},
			CreateInviteFunc: func(ctx context.Context, inv *models.Invite) error {
				if created != nil {
					*created = inv
				}
				return nil
			},
		}
	}

	t.Run("stores invite and dispatches email with link", func(t *testing.T) {
		var created *models.Invite
		var sent mailer.InviteEmail
		mail := &mocks.MockMailer{
			SendInviteFunc: func(ctx context.Context, invite mailer.InviteEmail) error {
				sent = invite
				return nil
			},
		}

		svc := newCompanyService(adminStore(&created), mail)
		invite, err := svc.Invite(ctx, "admin-1", "New@Example.com")

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", invite.Email)
		assert.Equal(t, fixedNow.Add(7*24*time.Hour), invite.ExpiresAt)
		require.NotNil(t, created)
		assert.Equal(t, "Acme", sent.CompanyName)
		assert.Equal(t, "https://app.pulsato.test/auth?invite="+invite.Token, sent.InviteLink)
	})

	t.Run("employee cannot invite", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return &models.Member{CompanyID: "c1", UserID: userID, Role: models.RoleEmployee}, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		_, err := svc.Invite(ctx, "u1", "new@example.com")

		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("empty email is rejected", func(t *testing.T) {
		svc := newCompanyService(&mocks.MockCompanyStore{}, &mocks.MockMailer{})
		_, err := svc.Invite(ctx, "admin-1", "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()

	validInvite := func() *models.Invite {
		return &models.Invite{
			ID:        "i1",
			CompanyID: "c1",
			Email:     "new@example.com",
			Token:     "tok",
			ExpiresAt: fixedNow.Add(24 * time.Hour),
			CreatedAt: fixedNow.Add(-24 * time.Hour),
		}
	}

	t.Run("joins as employee and consumes the token", func(t *testing.T) {
		var addedRole string
		var accepted bool
		companies := &mocks.MockCompanyStore{
			FindInviteByTokenFunc: func(ctx context.Context, token string) (*models.Invite, error) {
				return validInvite(), nil
			},
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) { return nil, nil },
			AddMemberFunc: func(ctx context.Context, companyID, userID, role string, joinedAt time.Time) error {
				addedRole = role
				return nil
			},
			MarkInviteAcceptedFunc: func(ctx context.Context, id string, at time.Time) error {
				accepted = true
				return nil
			},
			GetCompanyFunc: func(ctx context.Context, id string) (*models.Company, error) {
				return &models.Company{ID: "c1", Name: "Acme"}, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		company, err := svc.AcceptInvite(ctx, "u2", "tok")

		require.NoError(t, err)
		assert.Equal(t, "Acme", company.Name)
		assert.Equal(t, models.RoleEmployee, addedRole)
		assert.True(t, accepted)
	})

	t.Run("expired invite", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindInviteByTokenFunc: func(ctx context.Context, token string) (*models.Invite, error) {
				inv := validInvite()
				inv.ExpiresAt = fixedNow.Add(-time.Minute)
				return inv, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		_, err := svc.AcceptInvite(ctx, "u2", "tok")

		assert.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("already accepted invite", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindInviteByTokenFunc: func(ctx context.Context, token string) (*models.Invite, error) {
				inv := validInvite()
				inv.AcceptedAt = &fixedNow
				return inv, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		_, err := svc.AcceptInvite(ctx, "u2", "tok")

		assert.ErrorIs(t, err, ErrInviteAccepted)
	})

	t.Run("member of another company cannot accept", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindInviteByTokenFunc: func(ctx context.Context, token string) (*models.Invite, error) {
				return validInvite(), nil
			},
			FindMembershipFunc: func(ctx context.Context, userID string) (*models.Member, error) {
				return &models.Member{CompanyID: "other", UserID: userID, Role: models.RoleEmployee}, nil
			},
		}

		svc := newCompanyService(companies, &mocks.MockMailer{})
		_, err := svc.AcceptInvite(ctx, "u2", "tok")

		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}
