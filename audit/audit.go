// Package audit persists every decision this engine makes to a local
// sqlite database and exports CSV/Parquet reconciliation reports,
// grounded in services/otc-gateway/recon.Reconciler's gorm-backed model
// and its CSV/Parquet report-writing pair. Unlike the policy evaluator,
// this package observes decisions after the fact; it never feeds back into
// adjudication (spec.md's non-goals: no cross-run persisted state).
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"loadshield/domain"
)

// DecisionRecord is the gorm model persisted for every adjudicated record.
type DecisionRecord struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	LineNo          uint64 `gorm:"index"`
	RecordID        string `gorm:"index"`
	CustomerID      string `gorm:"index"`
	DayKey          string `gorm:"index"`
	WeekKey         string
	EffectiveAmount int64
	Accepted        bool
	IsCanonical     bool
	IsPrimeID       bool
	Reasons         string
	RecordedAt      time.Time
}

// TableName pins the table name independent of the struct name.
func (DecisionRecord) TableName() string { return "decisions" }

// Log owns the sqlite-backed decision log for one run.
type Log struct {
	db *gorm.DB
}

// Open creates (or reuses) a sqlite database at path and migrates the
// decisions table.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: create database dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	if err := db.AutoMigrate(&DecisionRecord{}); err != nil {
		return nil, fmt.Errorf("audit: migrate schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Record appends one decision to the log. Called once per canonical or
// non-canonical Decision produced by the policy step; it never rejects a
// record and never mutates adjudication state.
func (l *Log) Record(d domain.Decision, recordedAt time.Time) error {
	reasons := ""
	for i, r := range d.Reasons {
		if i > 0 {
			reasons += ","
		}
		reasons += string(r)
	}
	row := DecisionRecord{
		LineNo:          d.LineNo,
		RecordID:        d.ID,
		CustomerID:      d.CustomerID,
		DayKey:          d.DayKey.String(),
		WeekKey:         d.WeekKey.String(),
		EffectiveAmount: int64(d.EffectiveAmount),
		Accepted:        d.Accepted,
		IsCanonical:     d.IsCanonical,
		IsPrimeID:       d.IsPrimeID,
		Reasons:         reasons,
		RecordedAt:      recordedAt,
	}
	if err := l.db.Create(&row).Error; err != nil {
		return fmt.Errorf("audit: insert decision: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("audit: unwrap database handle: %w", err)
	}
	return sqlDB.Close()
}

// DB exposes the underlying gorm handle for report generation.
func (l *Log) DB() *gorm.DB { return l.db }
