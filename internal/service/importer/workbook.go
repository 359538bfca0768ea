package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Punch-clock exports print the affiliation number in E3 of the first sheet.
const (
	affiliationCell = "E3"
	affiliationRow  = 2
	affiliationCol  = 4

	maxXLSRows  = 100000
	xlsScanCols = 32
)

var affiliationPattern = regexp.MustCompile(`(?is)N.*?AFILIAC.*?(\d+)`)

// ReadWorkbook decodes an upload into rows of cell text plus the affiliation
// number it carries.
func ReadWorkbook(data []byte, format importer.Format) (importer.Workbook, error) {
	if len(data) == 0 {
		return importer.Workbook{}, importer.ErrEmptyFile
	}

	var (
		wb  importer.Workbook
		err error
	)
	switch format {
	case importer.FormatXLSX:
		wb, err = readXLSX(data)
	case importer.FormatXLS:
		wb, err = readXLS(data)
	case importer.FormatCSV:
		wb, err = readCSV(data)
	default:
		return importer.Workbook{}, importer.ErrUnsupportedFormat
	}
	if err != nil {
		return importer.Workbook{}, err
	}

	if wb.AffiliationNumber == "" {
		return importer.Workbook{}, importer.ErrAffiliationMissing
	}
	return wb, nil
}

func readXLSX(data []byte) (importer.Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return importer.Workbook{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
	}
	defer file.Close()

	sheet := file.GetSheetName(file.GetActiveSheetIndex())
	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return importer.Workbook{}, fmt.Errorf("%w: workbook has no sheets", importer.ErrCorruptInput)
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return importer.Workbook{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
	}

	cell, err := file.GetCellValue(sheet, affiliationCell)
	if err != nil {
		return importer.Workbook{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
	}

	return importer.Workbook{
		AffiliationNumber: normalizeAffiliation(cell),
		Rows:              rows,
	}, nil
}

func readXLS(data []byte) (wb importer.Workbook, err error) {
	// The xls decoder panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			wb = importer.Workbook{}
			err = fmt.Errorf("%w: %v", importer.ErrCorruptInput, r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return importer.Workbook{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return importer.Workbook{}, fmt.Errorf("%w: workbook has no sheets", importer.ErrCorruptInput)
	}

	rows := xlsSheetRows(sheet, maxXLSRows)
	wb = importer.Workbook{Rows: rows}
	if len(rows) > affiliationRow && len(rows[affiliationRow]) > affiliationCol {
		wb.AffiliationNumber = normalizeAffiliation(rows[affiliationRow][affiliationCol])
	}
	return wb, nil
}

// xlsSheetRows reads one sheet into a dense grid. Missing rows stay empty so
// row indexes match the sheet's.
func xlsSheetRows(sheet *xls.WorkSheet, limit int) [][]string {
	n := min(int(sheet.MaxRow)+1, limit)
	rows := make([][]string, n)
	for i := range n {
		row := xlsRow(sheet, i)
		if row == nil {
			continue
		}
		// Rows built from bare cell records report LastCol 0.
		cells := make([]string, max(row.LastCol()+1, xlsScanCols))
		for j := range cells {
			cells[j] = row.Col(j)
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		rows[i] = cells
	}
	return rows
}

// xlsRow returns nil for rows the sheet never wrote; the decoder panics on them.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func readCSV(data []byte) (importer.Workbook, error) {
	text := decodeText(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return importer.Workbook{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
		}
		rows = append(rows, record)
	}

	return importer.Workbook{
		AffiliationNumber: findAffiliation(text),
		Rows:              rows,
	}, nil
}

// decodeText keeps UTF-8 exports as they are and reads anything else as
// Latin-1, which is what the punch clocks emit.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func findAffiliation(text string) string {
	m := affiliationPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return normalizeAffiliation(m[1])
}

// normalizeAffiliation strips spreadsheet number formatting such as "1234.0".
func normalizeAffiliation(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
