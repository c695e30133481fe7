package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// HighsHeader is the header row of the sample 52-week-high workbook.
var HighsHeader = []interface{}{
	"종목명", "종가", "PER", "EPS", "PEG (PER/EPS)", "업종",
	"1분기 총매출", "2분기 총매출", "3분기 총매출", "1분기 순이익", "2분기 순이익",
}

// HighsRows are the sample data rows. Beta trades under the $10 floor and
// Delta is loss-making, so default screening keeps Alpha, Gamma and Epsilon.
var HighsRows = [][]interface{}{
	{"Alpha", 12, 15, 2.0, 0.8, "Tech", 100, 120, 150, 10, 12},
	{"Beta", 8, 10, 1.0, 1.2, "Energy", 200, 180, 170, 20, 15},
	{"Gamma", 20, 30, 3.0, 1.5, "Tech", 0, 50, 60, -10, -5},
	{"Delta", 25, 12, -1.0, "", "Banks", 300, 330, 300, 30, 33},
	{"Epsilon", 40, 18, 4.0, 2.0, "Energy", 400, "N/A", 420, 40, 60},
}

// WriteHighsWorkbook saves the sample workbook into a temp dir and returns
// its path.
func WriteHighsWorkbook(t testing.TB) string {
	t.Helper()
	return WriteWorkbook(t, "highs.xlsx", "52주 신고가", append([][]interface{}{HighsHeader}, HighsRows...))
}

// WriteWorkbook saves rows to a single-sheet workbook under t.TempDir().
func WriteWorkbook(t testing.TB, name, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
