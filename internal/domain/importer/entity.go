package importer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

// Format is the hint telling the reader how to decode an upload.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

func (f Format) Valid() bool {
	return f == FormatXLSX || f == FormatXLS || f == FormatCSV
}

// FormatFromFilename guesses the format from the extension; text files are
// treated as delimited text.
func FormatFromFilename(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	case ".csv", ".txt":
		return FormatCSV, true
	}
	return "", false
}

// Workbook is a decoded punch-clock export.
type Workbook struct {
	AffiliationNumber string
	Rows              [][]string
}

type OutcomeKind int

const (
	// OutcomeComplete carries a day with both punches.
	OutcomeComplete OutcomeKind = iota + 1
	// OutcomeIncomplete carries a day that only got its entry punch.
	OutcomeIncomplete
	// OutcomeSoftError carries a row problem that does not stop the scan.
	OutcomeSoftError
)

// Outcome is one item produced by the row scanner.
type Outcome struct {
	Kind   OutcomeKind
	Date   time.Time
	Entry  clock.TimeOfDay
	Exit   clock.TimeOfDay
	Row    int // 1-based row number in the export
	Reason string
}

// SoftError is a per-day problem reported back for manual follow-up.
type SoftError struct {
	Date   *time.Time
	Row    int
	Reason string
}

type Report struct {
	EmployeeID        string
	EmployeeName      string
	AffiliationNumber string
	Completed         int
	Incomplete        int
	SoftErrors        []SoftError
	Balance           time.Duration
	StoredFile        string
}
