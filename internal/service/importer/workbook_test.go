package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func buildXLSX(t *testing.T, affiliation any, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Informe de jornada"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Nº Afiliación"))
	if affiliation != nil {
		require.NoError(t, f.SetCellValue(sheet, "E3", affiliation))
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+5)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestReadWorkbook_XLSX(t *testing.T) {
	data := buildXLSX(t, "12345678", [][]string{
		{"Viernes, 01 marzo 2024"},
		{"08:00", "Inicio de jornada"},
		{"18:00", "Finaliza la jornada"},
	})

	wb, err := ReadWorkbook(data, importer.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "12345678", wb.AffiliationNumber)

	var found bool
	for _, row := range wb.Rows {
		if len(row) > 1 && row[1] == "Finaliza la jornada" {
			found = true
			assert.Equal(t, "18:00", row[0])
		}
	}
	assert.True(t, found)
}

func TestReadWorkbook_XLSXNumericAffiliation(t *testing.T) {
	data := buildXLSX(t, 4021, nil)

	wb, err := ReadWorkbook(data, importer.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "4021", wb.AffiliationNumber)
}

func TestReadWorkbook_XLSXMissingAffiliation(t *testing.T) {
	data := buildXLSX(t, nil, [][]string{{"Viernes, 01 marzo 2024"}})

	_, err := ReadWorkbook(data, importer.FormatXLSX)
	assert.ErrorIs(t, err, importer.ErrAffiliationMissing)
}

func TestReadWorkbook_XLSReadsFirstSheetOnly(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "two_sheets.xls"))
	require.NoError(t, err)

	wb, err := ReadWorkbook(data, importer.FormatXLS)
	require.NoError(t, err)
	assert.Equal(t, "12345678", wb.AffiliationNumber)

	require.Len(t, wb.Rows, 7)
	assert.Equal(t, []string{"Informe de jornada"}, wb.Rows[0])
	assert.Empty(t, wb.Rows[1])
	assert.Equal(t, "Viernes, 01 marzo 2024", wb.Rows[4][0])
	assert.Equal(t, []string{"18:00", "Finaliza la jornada"}, wb.Rows[6])
	for _, row := range wb.Rows {
		assert.NotContains(t, row, "Lunes, 04 marzo 2024")
	}
}

func TestReadWorkbook_CSVLatin1(t *testing.T) {
	text := "Informe de jornada\r\n" +
		"Nº AFILIACIÓN:,,,,00987\r\n" +
		"\"Miércoles, 06 marzo 2024\"\r\n" +
		"08:00,Inicio de jornada\r\n" +
		"17:30,Finaliza la jornada\r\n"

	wb, err := ReadWorkbook(latin1(t, text), importer.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "00987", wb.AffiliationNumber)
	require.Len(t, wb.Rows, 5)
	assert.Equal(t, "Miércoles, 06 marzo 2024", wb.Rows[2][0])
	assert.Equal(t, []string{"17:30", "Finaliza la jornada"}, wb.Rows[4])
}

func TestReadWorkbook_CSVUTF8WithBOM(t *testing.T) {
	text := "\xef\xbb\xbfNº Afiliación 5512\n\"Jueves, 07 marzo 2024\"\n"

	wb, err := ReadWorkbook([]byte(text), importer.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "5512", wb.AffiliationNumber)
	assert.Equal(t, "Jueves, 07 marzo 2024", wb.Rows[1][0])
}

func TestReadWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format importer.Format
		want   error
	}{
		{"empty file", nil, importer.FormatCSV, importer.ErrEmptyFile},
		{"unknown format", []byte("x"), importer.Format("pdf"), importer.ErrUnsupportedFormat},
		{"corrupt xlsx", []byte("not a zip archive"), importer.FormatXLSX, importer.ErrCorruptInput},
		{"corrupt xls", []byte("not an ole2 compound file"), importer.FormatXLS, importer.ErrCorruptInput},
		{"csv without affiliation", []byte("Viernes, 01 marzo 2024\n"), importer.FormatCSV, importer.ErrAffiliationMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadWorkbook(tt.data, tt.format)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeAffiliation(t *testing.T) {
	assert.Equal(t, "1234", normalizeAffiliation(" 1234.0 "))
	assert.Equal(t, "0012", normalizeAffiliation("0012"))
	assert.Equal(t, "", normalizeAffiliation("  "))
}
