package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"veridia_hiring/internal/model"

	"github.com/jackc/pgx/v5"
)

// ApplicationRepository defines operations for application data
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id string) (*model.Application, error)
	FindByUser(ctx context.Context, userID string) ([]model.Application, error)
	Search(ctx context.Context, filters model.AdminApplicationFilters) ([]model.CandidateSummary, error)
	Count(ctx context.Context, filters model.AdminApplicationFilters) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (*model.StatusCounts, error)
}

type applicationRepository struct {
	db DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, user_id, first_name, last_name, email, phone, address,
        degree, university, graduation_year, gpa,
        position, experience, skills, linkedin_url, portfolio_url,
        cover_letter, resume_path, status, applied_date, last_updated`

// searchColumns are matched case-insensitively by the admin free-text search.
var searchColumns = []string{"a.first_name", "a.last_name", "a.email", "a.position"}

// Create inserts a new application
func (r *applicationRepository) Create(ctx context.Context, a *model.Application) error {
	sql := `INSERT INTO applications (` + applicationColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.db.Exec(ctx, sql,
		a.ID, a.UserID, a.FirstName, a.LastName, a.Email, a.Phone, a.Address,
		a.Degree, a.University, a.GraduationYear, a.GPA,
		a.Position, a.Experience, a.Skills, a.LinkedInURL, a.PortfolioURL,
		a.CoverLetter, a.ResumePath, string(a.Status), a.AppliedDate, a.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// FindByID retrieves an application by its ID
func (r *applicationRepository) FindByID(ctx context.Context, id string) (*model.Application, error) {
	sql := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	a, err := scanApplication(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	return a, nil
}

// FindByUser retrieves every application owned by a user, newest first
func (r *applicationRepository) FindByUser(ctx context.Context, userID string) ([]model.Application, error) {
	sql := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY applied_date DESC, id DESC`
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by user: %w", err)
	}
	defer rows.Close()

	applications := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		applications = append(applications, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return applications, nil
}

// Search returns one page of applications matching the admin filters,
// newest first, joined with the owning account's identity.
func (r *applicationRepository) Search(ctx context.Context, filters model.AdminApplicationFilters) ([]model.CandidateSummary, error) {
	where, args := buildApplicationFilter(filters)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT a.id, a.first_name, a.last_name, a.email, a.phone, a.position, a.skills,
                               a.experience, a.status, a.applied_date, a.resume_path, u.full_name, u.email
                               FROM applications a LEFT JOIN users u ON u.id = a.user_id`)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" ORDER BY a.applied_date DESC, a.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}
	defer rows.Close()

	summaries := []model.CandidateSummary{}
	for rows.Next() {
		var (
			s                  model.CandidateSummary
			firstName, last    string
			status             string
			ownerName, ownerEm *string
		)
		if err := rows.Scan(
			&s.ID, &firstName, &last, &s.Email, &s.Phone, &s.Position, &s.Skills,
			&s.Experience, &status, &s.AppliedDate, &s.ResumePath, &ownerName, &ownerEm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application summary: %w", err)
		}
		s.CandidateName = strings.TrimSpace(firstName + " " + last)
		s.Status = model.Status(status)
		if ownerName != nil && ownerEm != nil {
			s.SubmittedBy = &model.Submitter{FullName: *ownerName, Email: *ownerEm}
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application summaries: %w", err)
	}
	return summaries, nil
}

// Count returns the number of applications matching the admin filters,
// ignoring the page window.
func (r *applicationRepository) Count(ctx context.Context, filters model.AdminApplicationFilters) (int64, error) {
	where, args := buildApplicationFilter(filters)
	sql := `SELECT COUNT(*) FROM applications a` + where

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// UpdateStatus sets the status and last-update timestamp of an application
func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) error {
	sql := `UPDATE applications SET status = $1, last_updated = $2 WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, sql, string(status), at, id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an application. The resume file is left on disk.
func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	sql := `DELETE FROM applications WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the total and per-status application counts
func (r *applicationRepository) CountByStatus(ctx context.Context) (*model.StatusCounts, error) {
	sql := `SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = $1),
            COUNT(*) FILTER (WHERE status = $2),
            COUNT(*) FILTER (WHERE status = $3),
            COUNT(*) FILTER (WHERE status = $4)
        FROM applications`
	counts := &model.StatusCounts{}
	err := r.db.QueryRow(ctx, sql,
		string(model.StatusSubmitted), string(model.StatusUnderReview),
		string(model.StatusSelected), string(model.StatusRejected),
	).Scan(&counts.TotalApplications, &counts.Submitted, &counts.UnderReview, &counts.Selected, &counts.Rejected)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	return counts, nil
}

func buildApplicationFilter(filters model.AdminApplicationFilters) (string, []any) {
	var conditions []string
	args := []any{}

	if filters.Status != nil {
		args = append(args, string(*filters.Status))
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		matches := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			matches = append(matches, col+" ILIKE "+placeholder)
		}
		conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	var status string
	err := row.Scan(
		&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Address,
		&a.Degree, &a.University, &a.GraduationYear, &a.GPA,
		&a.Position, &a.Experience, &a.Skills, &a.LinkedInURL, &a.PortfolioURL,
		&a.CoverLetter, &a.ResumePath, &status, &a.AppliedDate, &a.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	a.Status = model.Status(status)
	return a, nil
}
