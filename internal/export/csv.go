// Package export renders the session log as a spreadsheet-friendly CSV.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"focustimer/internal/model"
)

// BOM makes spreadsheet applications detect UTF-8.
const BOM = "\uFEFF"

var header = []string{"開始日時", "終了日時", "作業時間", "休憩時間", "メモ"}

// RecordsCSV renders records without the byte order mark. Timestamps are shown
// in loc.
func RecordsCSV(records []model.Record, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, record := range records {
		note := strings.ReplaceAll(record.Note, "\n", " ")
		lines = append(lines, strings.Join([]string{
			FormatDateTime(record.StartAt, loc),
			FormatDateTime(record.EndAt, loc),
			FormatHMS(record.TotalWork),
			FormatHMS(record.TotalBreak),
			EscapeField(note),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteRecords writes the BOM followed by the CSV body.
func WriteRecords(w io.Writer, records []model.Record, loc *time.Location) error {
	if _, err := io.WriteString(w, BOM+RecordsCSV(records, loc)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// EscapeField quotes a field containing a comma, quote or newline and doubles
// embedded quotes.
func EscapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006/01/02 15:04:05")
}

// Filename is the download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("pomodoro-records-%s.csv", now.Format("2006-01-02"))
}
