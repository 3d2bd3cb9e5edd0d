package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fmukit/internal/host"
)

const (
	metadataFile = "metadata.json"
	outputsFile  = "outputs.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Mode      string             `json:"mode"`
	Standard  string             `json:"standard"`
	Timestamp time.Time          `json:"timestamp"`
	Start     float64            `json:"start"`
	Stop      float64            `json:"stop"`
	Step      float64            `json:"step"`
	Solver    string             `json:"solver,omitempty"`
	Steps     int                `json:"steps"`
	Retries   int                `json:"retries"`
	Outputs   []string           `json:"outputs"`
	Values    map[string]string  `json:"values,omitempty"`
	Final     map[string]float64 `json:"final"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes the metadata and trajectory of a run into a new directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, result *host.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", result.Model, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Model = result.Model
	meta.Mode = result.Mode.String()
	meta.Timestamp = ts
	meta.Steps = result.Steps
	meta.Retries = result.Retries
	meta.Outputs = result.Names
	meta.Values = result.Values
	meta.Final = make(map[string]float64, len(result.Names))
	for _, name := range result.Names {
		meta.Final[name], _ = result.Last(name)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeOutputs(filepath.Join(runDir, outputsFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutputs(path string, result *host.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, result.Names...)); err != nil {
		return err
	}
	for i, row := range result.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, val := range row {
			rec = append(rec, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is a stored trajectory: one column per recorded output.
type Series struct {
	Names   []string
	Times   []float64
	Columns [][]float64
}

// Column returns the values of the named output.
func (s *Series) Column(name string) ([]float64, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Columns[i], true
		}
	}
	return nil, false
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, outputsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Series{}, nil
	}

	header := records[0]
	series := &Series{
		Names:   header[1:],
		Times:   make([]float64, 0, len(records)-1),
		Columns: make([][]float64, len(header)-1),
	}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", outputsFile, line+2, err)
			}
			vals[j] = v
		}
		series.Times = append(series.Times, vals[0])
		for j := range series.Columns {
			series.Columns[j] = append(series.Columns[j], vals[j+1])
		}
	}
	return series, nil
}
