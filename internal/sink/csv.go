package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/course"
)

// CSVSink writes records to a CSV file with the fixed 14-column schema.
// The file is written to a temporary sibling first and renamed into place,
// so consumers never observe a partial file.
type CSVSink struct {
	path          string
	rejectInvalid bool
	logger        *zap.Logger
}

// NewCSVSink returns a sink targeting path, creating parent directories as
// needed. When rejectInvalid is set, records missing provider or URL are
// dropped with a warning instead of written.
func NewCSVSink(path string, rejectInvalid bool, logger *zap.Logger) (*CSVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink path must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sink dir %s: %w", dir, err)
		}
	}
	return &CSVSink{
		path:          path,
		rejectInvalid: rejectInvalid,
		logger:        logger,
	}, nil
}

// Write serializes the batch: one header row, one row per record, absent
// optionals as empty strings.
func (s *CSVSink) Write(ctx context.Context, records []course.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best effort: the temp file only survives on the error paths.
		_ = os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(course.CSVHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if s.rejectInvalid && !rec.Valid() {
			s.logger.Warn("dropping invalid record",
				zap.String("id", rec.ID),
				zap.String("provider", rec.Provider),
			)
			continue
		}
		if err := w.Write(rec.CSVRow()); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.logger.Info("records written",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
	)
	return nil
}
