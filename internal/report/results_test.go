package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/IGC-Advanced-Imaging-Resource/Dodd2023-Paper/pkg/geometry"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return records
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	rows := []ResultRow{
		{Filename: "Lng_1", Cell: "Cell_1", NoSpots: 42, ROIArea: 1500},
		{Filename: "Lng_1", Cell: "Cell_2", NoSpots: 0, ROIArea: 900},
		{Filename: "Lng_2", Cell: "Cell_1", NoSpots: 7, ROIArea: 1200},
	}

	if err := WriteResults(dir, rows); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, ResultsFileName))
	if len(records) != 4 {
		t.Fatalf("got %d records, want header + 3 rows", len(records))
	}

	header := records[0]
	want := []string{"Filename", "Cell", "No_Spots", "ROI_Area"}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	if records[1][0] != "Lng_1" || records[1][2] != "42" || records[1][3] != "1500" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][2] != "0" {
		t.Errorf("zero-spot cell row = %v, should still be present", records[2])
	}
}

func TestWriteResultsReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	if err := WriteResults(dir, []ResultRow{{Filename: "a", Cell: "Cell_1"}}); err != nil {
		t.Fatal(err)
	}
	rows := []ResultRow{
		{Filename: "a", Cell: "Cell_1"},
		{Filename: "a", Cell: "Cell_2"},
	}
	if err := WriteResults(dir, rows); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, filepath.Join(dir, ResultsFileName))
	if len(records) != 3 {
		t.Errorf("got %d records after rewrite, want 3", len(records))
	}
}

func TestWriteCoords(t *testing.T) {
	dir := t.TempDir()
	pts := []geometry.PointInt{{X: 10, Y: 20}, {X: 30, Y: 40}}

	if err := WriteCoords(dir, "Lng_1", 0, pts); err != nil {
		t.Fatalf("WriteCoords failed: %v", err)
	}

	path := filepath.Join(dir, CoordsDirName, "Lng_1_Cell1.csv")
	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 points", len(records))
	}
	if records[0][0] != "X" || records[0][1] != "Y" {
		t.Errorf("header = %v, want [X Y]", records[0])
	}
	if records[1][0] != "10" || records[1][1] != "20" {
		t.Errorf("point 1 = %v, want [10 20]", records[1])
	}
}

func TestWriteCoordsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCoords(dir, "Lng_1", 2, nil); err != nil {
		t.Fatalf("WriteCoords failed: %v", err)
	}

	// Zero-spot cells still get a coordinate file, header only.
	records := readCSV(t, filepath.Join(dir, CoordsDirName, "Lng_1_Cell3.csv"))
	if len(records) != 1 {
		t.Errorf("got %d records, want header only", len(records))
	}
}

func TestAccumulator(t *testing.T) {
	var a Accumulator
	a.Append(ResultRow{Filename: "s", Cell: "Cell_1", NoSpots: 1})
	a.Append(ResultRow{Filename: "s", Cell: "Cell_2", NoSpots: 2})

	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}

	rows := a.Rows()
	rows[0].NoSpots = 99
	if a.Rows()[0].NoSpots != 1 {
		t.Error("Rows should return a snapshot, not the backing slice")
	}
}
