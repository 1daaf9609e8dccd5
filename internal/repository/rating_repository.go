package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/godilite/camps-trends/internal/repository/models"
)

var ErrNotFound = errors.New("not found")

// RatingRepository is the read side of the rating submission store.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository wraps an existing pool; driverName selects the bind style.
func NewRatingRepository(db *sql.DB, driverName string) *RatingRepository {
	return &RatingRepository{db: sqlx.NewDb(db, driverName)}
}

const teamSelect = `
	SELECT t.id, t.name, COUNT(e.id) AS member_count
	FROM teams AS t
	LEFT JOIN employees AS e ON e.team_id = t.id
`

// ListTeams returns every team with its current member count.
func (r *RatingRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	const query = teamSelect + `
		GROUP BY t.id, t.name
		ORDER BY t.id
	`
	var teams []models.Team
	if err := r.db.SelectContext(ctx, &teams, query); err != nil {
		return nil, fmt.Errorf("query ListTeams: %w", err)
	}
	return teams, nil
}

func (r *RatingRepository) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	const query = teamSelect + `
		WHERE t.id = ?
		GROUP BY t.id, t.name
	`
	var team models.Team
	if err := r.db.GetContext(ctx, &team, r.db.Rebind(query), teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Team{}, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
		}
		return models.Team{}, fmt.Errorf("query GetTeam: %w", err)
	}
	return team, nil
}

// SubjectExists reports whether an employee ("EMPLOYEE") or team ("TEAM") id is known.
func (r *RatingRepository) SubjectExists(ctx context.Context, kind, id string) (bool, error) {
	var query string
	switch kind {
	case "EMPLOYEE":
		query = `SELECT COUNT(1) FROM employees WHERE id = ?`
	case "TEAM":
		query = `SELECT COUNT(1) FROM teams WHERE id = ?`
	default:
		return false, fmt.Errorf("unknown subject kind %q", kind)
	}

	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), id); err != nil {
		return false, fmt.Errorf("query SubjectExists: %w", err)
	}
	return n > 0, nil
}

// GetRatings returns ratings matching the filter ordered by date ascending.
func (r *RatingRepository) GetRatings(ctx context.Context, f models.RatingFilter) ([]models.RatingRow, error) {
	var (
		where = []string{"r.rating_date >= ?", "r.rating_date < ?"}
		args  = []any{f.Start.UTC(), f.End.UTC()}
	)
	if f.TeamID != "" {
		where = append(where, "e.team_id = ?")
		args = append(args, f.TeamID)
	}
	if f.EmployeeID != "" {
		where = append(where, "r.employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Category != "" {
		where = append(where, "r.category = ?")
		args = append(args, f.Category)
	}

	query := `
		SELECT r.id, r.employee_id, COALESCE(e.team_id, '') AS team_id, r.category, r.rating_date, r.rating
		FROM engagement_ratings AS r
		JOIN employees AS e ON e.id = r.employee_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY r.rating_date ASC, r.id ASC
	`

	var rows []models.RatingRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query GetRatings: %w", err)
	}
	return rows, nil
}
