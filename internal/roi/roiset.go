package roi

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ExportZip writes all ROIs for one series to a RoiSet archive: one JSON
// entry per ROI, named by its label. The archive round-trips through
// ImportZip with vertex lists and labels intact. It is written to a
// temporary file and renamed into place, so an interrupted run never
// leaves a truncated archive behind.
func ExportZip(path string, rois []ROI) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create ROI archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, r := range rois {
		w, err := zw.Create(fmt.Sprintf("%s.json", r.Label))
		if err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("failed to add %s to ROI archive: %w", r.Label, err)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("failed to encode %s: %w", r.Label, err)
		}
	}

	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finalize ROI archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize ROI archive: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ImportZip reads a RoiSet archive back into an ordered ROI list.
func ImportZip(path string) ([]ROI, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROI archive: %w", err)
	}
	defer zr.Close()

	var rois []ROI
	for _, entry := range zr.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}

		var r ROI
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entry.Name, err)
		}
		rois = append(rois, r)
	}

	// Zip entry order is not guaranteed; restore creation order.
	sort.Slice(rois, func(i, j int) bool { return rois[i].Index < rois[j].Index })
	return rois, nil
}

// ZipProvider replays ROIs from previously exported RoiSet archives,
// allowing a run to be reprocessed without an operator. It satisfies the
// pipeline's ROIProvider interface.
type ZipProvider struct {
	// Dir holds one "<seriesName>_RoiSet.zip" per series.
	Dir string
}

// AcquireROIs returns the archived ROIs for the named series, or an empty
// list (operator skip) when no archive exists for it.
func (p *ZipProvider) AcquireROIs(seriesName string, display image.Image) ([]ROI, error) {
	path := filepath.Join(p.Dir, seriesName+"_RoiSet.zip")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	return ImportZip(path)
}
