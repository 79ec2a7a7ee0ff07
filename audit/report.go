package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ExportReports reads every recorded decision back out of the log and
// writes a CSV and a Parquet reconciliation report into dir, mirroring
// services/otc-gateway/recon.Reconciler.writeReportFiles's CSV/Parquet pair.
func (l *Log) ExportReports(dir string) (csvPath, parquetPath string, err error) {
	var rows []DecisionRecord
	if err := l.db.Order("line_no").Find(&rows).Error; err != nil {
		return "", "", fmt.Errorf("audit: load decisions: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("audit: ensure report dir: %w", err)
	}
	csvPath = filepath.Join(dir, "decisions.csv")
	if err := writeCSV(csvPath, rows); err != nil {
		return "", "", err
	}
	parquetPath = filepath.Join(dir, "decisions.parquet")
	if err := writeParquet(parquetPath, rows); err != nil {
		return "", "", err
	}
	return csvPath, parquetPath, nil
}

func writeCSV(path string, rows []DecisionRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audit: create csv: %w", err)
	}
	defer file.Close()
	w := csv.NewWriter(file)
	header := []string{
		"line_no", "id", "customer_id", "day_key", "week_key",
		"effective_amount_minor", "accepted", "is_canonical", "is_prime_id",
		"reasons", "recorded_at",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("audit: write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.LineNo),
			row.RecordID,
			row.CustomerID,
			row.DayKey,
			row.WeekKey,
			fmt.Sprintf("%d", row.EffectiveAmount),
			boolString(row.Accepted),
			boolString(row.IsCanonical),
			boolString(row.IsPrimeID),
			row.Reasons,
			row.RecordedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("audit: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("audit: flush csv: %w", err)
	}
	return nil
}

type parquetRow struct {
	LineNo          int64  `parquet:"name=line_no, type=INT64"`
	RecordID        string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerID      string `parquet:"name=customer_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	DayKey          string `parquet:"name=day_key, type=BYTE_ARRAY, convertedtype=UTF8"`
	WeekKey         string `parquet:"name=week_key, type=BYTE_ARRAY, convertedtype=UTF8"`
	EffectiveAmount int64  `parquet:"name=effective_amount_minor, type=INT64"`
	Accepted        bool   `parquet:"name=accepted, type=BOOLEAN"`
	IsCanonical     bool   `parquet:"name=is_canonical, type=BOOLEAN"`
	IsPrimeID       bool   `parquet:"name=is_prime_id, type=BOOLEAN"`
	Reasons         string `parquet:"name=reasons, type=BYTE_ARRAY, convertedtype=UTF8"`
	RecordedAt      string `parquet:"name=recorded_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func writeParquet(path string, rows []DecisionRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audit: create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("audit: parquet schema: %w", err)
	}
	pw.RowGroupSize = 64 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		pr := &parquetRow{
			LineNo:          int64(row.LineNo),
			RecordID:        row.RecordID,
			CustomerID:      row.CustomerID,
			DayKey:          row.DayKey,
			WeekKey:         row.WeekKey,
			EffectiveAmount: row.EffectiveAmount,
			Accepted:        row.Accepted,
			IsCanonical:     row.IsCanonical,
			IsPrimeID:       row.IsPrimeID,
			Reasons:         row.Reasons,
			RecordedAt:      row.RecordedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("audit: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("audit: parquet flush: %w", err)
	}
	return file.Close()
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
