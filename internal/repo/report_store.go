package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/miradorstack/mirador-rul/internal/models"
)

// ReportRowRecord is the persisted form of one ranked report row.
type ReportRowRecord struct {
	ID                  uint64    `gorm:"primaryKey;autoIncrement"`
	RunID               string    `gorm:"size:64;index"`
	Rank                int       `gorm:"not null"`
	MachineID           string    `gorm:"size:64;index"`
	LastFailure         time.Time `gorm:"not null"`
	MachineCategory     string    `gorm:"size:64"`
	FailureType         string    `gorm:"size:64"`
	CharacteristicHours float64
	RULPercent          float64 `gorm:"column:rul_percent"`
	RawRatio            float64
	PriorityWeight      float64
	GeneratedAt         time.Time `gorm:"index"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (ReportRowRecord) TableName() string {
	return "rul_report_rows"
}

// ReportStore persists ranked reports to MySQL.
type ReportStore struct {
	db *gorm.DB
}

// NewReportStore opens a MySQL connection for dsn.
func NewReportStore(dsn string) (*ReportStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &ReportStore{db: db}, nil
}

// NewReportStoreWithDB wraps an existing gorm handle.
func NewReportStoreWithDB(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Migrate creates or updates the report table.
func (s *ReportStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ReportRowRecord{}); err != nil {
		return fmt.Errorf("migrate report table: %w", err)
	}
	return nil
}

// SaveReport inserts every ranked row of report under runID in one batch. Rank starts at 1.
func (s *ReportStore) SaveReport(ctx context.Context, runID string, report models.Report) error {
	if len(report.Rows) == 0 {
		return nil
	}

	records := make([]ReportRowRecord, 0, len(report.Rows))
	for i, row := range report.Rows {
		records = append(records, ReportRowRecord{
			RunID:               runID,
			Rank:                i + 1,
			MachineID:           row.MachineID,
			LastFailure:         row.LastFailure,
			MachineCategory:     row.MachineCategory,
			FailureType:         row.FailureType,
			CharacteristicHours: row.CharacteristicHours,
			RULPercent:          row.RULPercent,
			RawRatio:            row.RawRatio,
			PriorityWeight:      row.PriorityWeight,
			GeneratedAt:         report.GeneratedAt,
		})
	}

	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save report %s: %w", runID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *ReportStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
