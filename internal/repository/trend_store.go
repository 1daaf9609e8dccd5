package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/godilite/camps-trends/internal/repository/models"
)

const (
	insertBatchSize = 200
	employeeSubject = "EMPLOYEE"
)

// OpenGorm layers gorm over an existing pool so both access paths share connections.
func OpenGorm(db *sql.DB, driverName string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driverName {
	case "postgres":
		dialector = postgres.New(postgres.Config{Conn: db})
	case "sqlite3":
		dialector = &sqlite.Dialector{DriverName: driverName, Conn: db}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(logger),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// TrendStore persists materialized trend records.
type TrendStore struct {
	db *gorm.DB
}

func NewTrendStore(db *gorm.DB) *TrendStore {
	return &TrendStore{db: db}
}

// EnsureSchema creates the trend table and its indexes when missing.
func (s *TrendStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.TrendRecord{}); err != nil {
		return fmt.Errorf("ensure trend schema: %w", err)
	}
	return nil
}

// ReplaceUnit swaps every record of one (team, category) unit in a single
// transaction. Readers see either the old set or the new one. Employee
// records written here replace that employee's records for the category
// under any team, so an employee who changed teams keeps one series.
func (s *TrendStore) ReplaceUnit(ctx context.Context, teamID, category string, records []models.TrendRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ? AND category = ?", teamID, category).Delete(&models.TrendRecord{}).Error; err != nil {
			return fmt.Errorf("delete unit: %w", err)
		}
		employees := employeeSubjects(records)
		for start := 0; start < len(employees); start += insertBatchSize {
			batch := employees[start:min(start+insertBatchSize, len(employees))]
			err := tx.Where("category = ? AND subject_kind = ? AND subject_id IN ?", category, employeeSubject, batch).
				Delete(&models.TrendRecord{}).Error
			if err != nil {
				return fmt.Errorf("delete moved employees: %w", err)
			}
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ReplaceUnit %s/%s: %w", teamID, category, err)
	}
	return nil
}

func employeeSubjects(records []models.TrendRecord) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range records {
		if r.SubjectKind != employeeSubject {
			continue
		}
		if _, ok := seen[r.SubjectID]; ok {
			continue
		}
		seen[r.SubjectID] = struct{}{}
		ids = append(ids, r.SubjectID)
	}
	return ids
}

// FindTrends returns records for one subject with PeriodStart in [From, To],
// ordered by category then period start.
func (s *TrendStore) FindTrends(ctx context.Context, f models.TrendFilter) ([]models.TrendRecord, error) {
	q := s.db.WithContext(ctx).
		Where("subject_kind = ? AND subject_id = ? AND aggregation_period = ?", f.SubjectKind, f.SubjectID, f.AggregationPeriod)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if !f.From.IsZero() {
		q = q.Where("period_start >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("period_start <= ?", f.To.UTC())
	}

	var out []models.TrendRecord
	if err := q.Order("category ASC").Order("period_start ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("FindTrends: %w", err)
	}
	return out, nil
}

// CountUnit returns the number of stored records for a (team, category) unit.
func (s *TrendStore) CountUnit(ctx context.Context, teamID, category string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.TrendRecord{}).
		Where("team_id = ? AND category = ?", teamID, category).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("CountUnit: %w", err)
	}
	return n, nil
}
