package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsato/pulsato-server/internal/repository/models"
)

// CompanyRepository persists profiles, companies, memberships, and invites.
type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	const query = `
		INSERT INTO profiles (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Username, p.Email, p.PasswordHash, timeToDB(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// FindProfileByEmail returns nil without error when no profile matches.
func (r *CompanyRepository) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM profiles WHERE email = ?`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, email))
}

func (r *CompanyRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM profiles WHERE id = ?`
	p, err := r.scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (r *CompanyRepository) scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p         models.Profile
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if p.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("parse profile created_at: %w", err)
	}
	return &p, nil
}

// CreateCompany inserts the company and its creator's admin membership in one
// transaction.
func (r *CompanyRepository) CreateCompany(ctx context.Context, c *models.Company) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create company: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO companies (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.CreatedBy, timeToDB(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO company_members (company_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.CreatedBy, models.RoleAdmin, timeToDB(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var (
		c         models.Company
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	if c.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("parse company created_at: %w", err)
	}
	return &c, nil
}

// FindMembership returns the user's membership, or nil when the user belongs
// to no company. Users belong to at most one company.
func (r *CompanyRepository) FindMembership(ctx context.Context, userID string) (*models.Member, error) {
	const query = `
		SELECT cm.company_id, cm.user_id, cm.role, p.username, p.email, cm.joined_at
		FROM company_members AS cm
		JOIN profiles AS p ON p.id = cm.user_id
		WHERE cm.user_id = ?
	`
	var (
		m        models.Member
		joinedAt string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&m.CompanyID, &m.UserID, &m.Role, &m.Username, &m.Email, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	if m.JoinedAt, err = timeFromDB(joinedAt); err != nil {
		return nil, fmt.Errorf("parse membership joined_at: %w", err)
	}
	return &m, nil
}

func (r *CompanyRepository) AddMember(ctx context.Context, companyID, userID, role string, joinedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_members (company_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		companyID, userID, role, timeToDB(joinedAt))
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *CompanyRepository) ListMembers(ctx context.Context, companyID string) ([]models.Member, error) {
	const query = `
		SELECT cm.company_id, cm.user_id, cm.role, p.username, p.email, cm.joined_at
		FROM company_members AS cm
		JOIN profiles AS p ON p.id = cm.user_id
		WHERE cm.company_id = ?
		ORDER BY cm.joined_at
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var (
			m        models.Member
			joinedAt string
		)
		if err := rows.Scan(&m.CompanyID, &m.UserID, &m.Role, &m.Username, &m.Email, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if m.JoinedAt, err = timeFromDB(joinedAt); err != nil {
			return nil, fmt.Errorf("parse member joined_at: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func (r *CompanyRepository) CreateInvite(ctx context.Context, inv *models.Invite) error {
	const query = `
		INSERT INTO company_invites (id, company_id, email, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.CompanyID, inv.Email, inv.Token, timeToDB(inv.ExpiresAt), timeToDB(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *CompanyRepository) FindInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	const query = `
		SELECT id, company_id, email, token, expires_at, accepted_at, created_at
		FROM company_invites WHERE token = ?
	`
	var (
		inv        models.Invite
		expiresAt  string
		acceptedAt sql.NullString
		createdAt  string
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&inv.ID, &inv.CompanyID, &inv.Email, &inv.Token, &expiresAt, &acceptedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan invite: %w", err)
	}
	if inv.ExpiresAt, err = timeFromDB(expiresAt); err != nil {
		return nil, fmt.Errorf("parse invite expires_at: %w", err)
	}
	if inv.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("parse invite created_at: %w", err)
	}
	if acceptedAt.Valid {
		t, err := timeFromDB(acceptedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse invite accepted_at: %w", err)
		}
		inv.AcceptedAt = &t
	}
	return &inv, nil
}

func (r *CompanyRepository) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE company_invites SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`,
		timeToDB(at), id)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invite %s already accepted: %w", id, ErrNotFound)
	}
	return nil
}
