package models

import (
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
)

// AnalysisRecord is the durable copy of a conversation analysis, created
// once when a user submits a completed assessment and never mutated.
type AnalysisRecord struct {
	ID             string
	ConversationID string
	UserID         string
	CompanyID      string // empty when the user has no company
	Analysis       *convai.Analysis
	Transcript     []convai.Turn
	Metadata       *convai.Metadata
	Status         string
	Username       string // joined from profiles for display; may be empty
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is a registered user.
type Profile struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Company is an employer tenant.
type Company struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Membership roles. HR and admin can view team reports.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// Member links a profile to a company with a role.
type Member struct {
	CompanyID string
	UserID    string
	Role      string
	Username  string // joined from profiles
	Email     string // joined from profiles
	JoinedAt  time.Time
}

// Invite is a pending invitation to join a company, valid for a limited
// window and single-use.
type Invite struct {
	ID         string
	CompanyID  string
	Email      string
	Token      string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}
