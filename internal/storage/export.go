package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is a stored run flattened into one JSON document.
type ExportData struct {
	RunMetadata
	Times   []float64            `json:"times"`
	Outputs map[string][]float64 `json:"series"`
}

// Export writes run runID as indented JSON to w.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       series.Times,
		Outputs:     make(map[string][]float64, len(series.Names)),
	}
	for i, name := range series.Names {
		data.Outputs[name] = series.Columns[i]
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportFile writes run runID as JSON to path.
func (s *Store) ExportFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := s.Export(file, runID); err != nil {
		return err
	}
	return file.Close()
}
