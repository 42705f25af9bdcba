package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulsato/pulsato-server/internal/convai"
	"github.com/pulsato/pulsato-server/internal/repository/models"
)

var ErrNotFound = errors.New("not found")

// StatusDone marks records whose remote analysis completed before submission.
const StatusDone = "done"

// AnalysisRepository persists submitted assessment analyses.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// dbTimeLayout is fixed-width so lexicographic order on the stored strings
// matches chronological order. RFC3339Nano trims trailing fractional zeros,
// which would sort "T00:00:00Z" after "T00:00:00.5Z".
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeToDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

func timeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Insert stores a new analysis record. Records are write-once; there is no
// update path.
func (r *AnalysisRepository) Insert(ctx context.Context, rec *models.AnalysisRecord) error {
	analysisJSON, err := marshalNullable(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	transcriptJSON, err := marshalNullable(rec.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	metadataJSON, err := marshalNullable(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	const query = `
		INSERT INTO conversation_analyses
			(id, conversation_id, user_id, company_id, analysis, transcript, metadata, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ConversationID,
		rec.UserID,
		nullString(rec.CompanyID),
		analysisJSON,
		transcriptJSON,
		metadataJSON,
		rec.Status,
		timeToDB(rec.CreatedAt),
		timeToDB(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert analysis record: %w", err)
	}
	return nil
}

// ListByUser returns the user's completed records, newest first, optionally
// restricted to an inclusive created_at range.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]models.AnalysisRecord, error) {
	query := `
		SELECT ca.id, ca.conversation_id, ca.user_id, ca.company_id,
		       ca.analysis, ca.transcript, ca.metadata, ca.status,
		       p.username, ca.created_at, ca.updated_at
		FROM conversation_analyses AS ca
		LEFT JOIN profiles AS p ON p.id = ca.user_id
		WHERE ca.user_id = ? AND ca.status = ?
	`
	args := []any{userID, StatusDone}
	if from != nil {
		query += " AND ca.created_at >= ?"
		args = append(args, timeToDB(*from))
	}
	if to != nil {
		query += " AND ca.created_at <= ?"
		args = append(args, timeToDB(*to))
	}
	query += " ORDER BY ca.created_at DESC"

	return r.queryRecords(ctx, query, args...)
}

// ListByCompany returns all completed records submitted to a company, newest
// first, with the submitting user's profile name joined in.
func (r *AnalysisRepository) ListByCompany(ctx context.Context, companyID string) ([]models.AnalysisRecord, error) {
	const query = `
		SELECT ca.id, ca.conversation_id, ca.user_id, ca.company_id,
		       ca.analysis, ca.transcript, ca.metadata, ca.status,
		       p.username, ca.created_at, ca.updated_at
		FROM conversation_analyses AS ca
		LEFT JOIN profiles AS p ON p.id = ca.user_id
		WHERE ca.company_id = ? AND ca.status = ?
		ORDER BY ca.created_at DESC
	`
	return r.queryRecords(ctx, query, companyID, StatusDone)
}

// CountAll returns the total number of stored records, for admin stats.
func (r *AnalysisRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_analyses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count analysis records: %w", err)
	}
	return count, nil
}

func (r *AnalysisRepository) queryRecords(ctx context.Context, query string, args ...any) ([]models.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analysis records: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis records: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (models.AnalysisRecord, error) {
	var (
		rec            models.AnalysisRecord
		companyID      sql.NullString
		analysisJSON   sql.NullString
		transcriptJSON sql.NullString
		metadataJSON   sql.NullString
		username       sql.NullString
		createdAt      string
		updatedAt      string
	)
	err := rows.Scan(
		&rec.ID, &rec.ConversationID, &rec.UserID, &companyID,
		&analysisJSON, &transcriptJSON, &metadataJSON, &rec.Status,
		&username, &createdAt, &updatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan analysis record: %w", err)
	}

	rec.CompanyID = companyID.String
	rec.Username = username.String

	if analysisJSON.Valid {
		var analysis convai.Analysis
		if err := json.Unmarshal([]byte(analysisJSON.String), &analysis); err != nil {
			return rec, fmt.Errorf("unmarshal analysis for record %s: %w", rec.ID, err)
		}
		rec.Analysis = &analysis
	}
	if transcriptJSON.Valid {
		if err := json.Unmarshal([]byte(transcriptJSON.String), &rec.Transcript); err != nil {
			return rec, fmt.Errorf("unmarshal transcript for record %s: %w", rec.ID, err)
		}
	}
	if metadataJSON.Valid {
		var metadata convai.Metadata
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return rec, fmt.Errorf("unmarshal metadata for record %s: %w", rec.ID, err)
		}
		rec.Metadata = &metadata
	}

	if rec.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return rec, fmt.Errorf("parse created_at for record %s: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return rec, fmt.Errorf("parse updated_at for record %s: %w", rec.ID, err)
	}
	return rec, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch value := v.(type) {
	case *convai.Analysis:
		if value == nil {
			return sql.NullString{}, nil
		}
	case *convai.Metadata:
		if value == nil {
			return sql.NullString{}, nil
		}
	case []convai.Turn:
		if value == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
