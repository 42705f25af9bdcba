package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsato/pulsato-server/internal/repository/models"
	"github.com/pulsato/pulsato-server/internal/service/mocks"
)

func testSigner(userID, email string, ttl time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates profile and returns token", func(t *testing.T) {
		var created *models.Profile
		companies := &mocks.MockCompanyStore{
			FindProfileByEmailFunc: func(ctx context.Context, email string) (*models.Profile, error) {
				return nil, nil
			},
			CreateProfileFunc: func(ctx context.Context, p *models.Profile) error {
				created = p
				return nil
			},
		}

		svc := NewAuthService(companies, testSigner, zap.NewNop())
		result, err := svc.Signup(ctx, "ada", "Ada@Example.com", "hunter22")

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "ada@example.com", created.Email)
		assert.Equal(t, "token-for-"+created.ID, result.Token)
		assert.NoError(t, bcrypt.CompareHashAndPassword(created.PasswordHash, []byte("hunter22")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		companies := &mocks.MockCompanyStore{
			FindProfileByEmailFunc: func(ctx context.Context, email string) (*models.Profile, error) {
				return &models.Profile{ID: "u1", Email: email}, nil
			},
		}

		svc := NewAuthService(companies, testSigner, zap.NewNop())
		_, err := svc.Signup(ctx, "ada", "ada@example.com", "hunter22")

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewAuthService(&mocks.MockCompanyStore{}, testSigner, zap.NewNop())
		_, err := svc.Signup(ctx, "", "ada@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)

	store := &mocks.MockCompanyStore{
		FindProfileByEmailFunc: func(ctx context.Context, email string) (*models.Profile, error) {
			if email == "ada@example.com" {
				return &models.Profile{ID: "u1", Username: "ada", Email: email, PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc := NewAuthService(store, testSigner, zap.NewNop())
		result, err := svc.Login(ctx, "ada@example.com", "hunter22")

		require.NoError(t, err)
		assert.Equal(t, "token-for-u1", result.Token)
		assert.Equal(t, "ada", result.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(store, testSigner, zap.NewNop())
		_, err := svc.Login(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewAuthService(store, testSigner, zap.NewNop())
		_, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
