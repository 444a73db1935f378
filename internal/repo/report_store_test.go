package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/miradorstack/mirador-rul/internal/models"
)

func newMockStore(t *testing.T) (*ReportStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return NewReportStoreWithDB(gdb), mock
}

func TestReportStoreSaveReport(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2018, 12, 9, 0, 0, 0, 0, time.UTC)
	report := models.Report{
		GeneratedAt: now,
		Rows: []models.ReportRow{
			{MachineID: "102", LastFailure: now.Add(-150 * time.Hour), MachineCategory: "Generator", FailureType: "Pump", CharacteristicHours: 100, RawRatio: -0.5, PriorityWeight: 0.75},
			{MachineID: "101", LastFailure: now.Add(-50 * time.Hour), MachineCategory: "Polisher", FailureType: "Leak", CharacteristicHours: 100, RULPercent: 50, RawRatio: 0.5, PriorityWeight: 0.25},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rul_report_rows`")).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	if err := store.SaveReport(context.Background(), "run-1", report); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportStoreSaveEmptyReport(t *testing.T) {
	store, mock := newMockStore(t)
	if err := store.SaveReport(context.Background(), "run-2", models.Report{}); err != nil {
		t.Fatalf("expected nil error for empty report, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportStoreSaveError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rul_report_rows`")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	report := models.Report{Rows: []models.ReportRow{{MachineID: "1"}}}
	if err := store.SaveReport(context.Background(), "run-3", report); err == nil {
		t.Fatalf("expected error")
	}
}
