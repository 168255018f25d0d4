// Package report persists sweep results and renders them for humans.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verisim/verisim/internal/sampler"
	"github.com/verisim/verisim/internal/stats"
	"github.com/verisim/verisim/internal/sweep"
)

// Record is the serializable form of one run result.
type Record struct {
	Point   sweep.Point                       `json:"point"`
	Key     string                            `json:"key"`
	Scalars map[string]float64                `json:"scalars"`
	Bundles map[string]map[stats.Kind]float64 `json:"bundles"`
	Steps   int                               `json:"steps"`
	Passed  bool                              `json:"passed"`
	Error   string                            `json:"error,omitempty"`
}

// FromResult flattens a run result into its stored form.
func FromResult(res *sweep.Result) Record {
	rec := Record{
		Point:   res.Point,
		Key:     res.Point.Key(),
		Scalars: res.Scalars,
		Bundles: res.Bundles,
		Steps:   res.Steps,
		Passed:  res.Passed,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

// SweepMetadata describes one stored sweep.
type SweepMetadata struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Scenario  sweep.Scenario `json:"scenario"`
	Kinds     string         `json:"kinds"`
	Points    int            `json:"points"`
	Failed    int            `json:"failed"`
}

// Store keeps one directory per sweep under a base directory:
// metadata.json, results.json and a flattened results.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Save(scenario sweep.Scenario, kinds string, results []*sweep.Result) (string, error) {
	sweepID := fmt.Sprintf("sweep_%d", time.Now().Unix())
	dir := filepath.Join(s.baseDir, sweepID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	records := make([]Record, len(results))
	failed := 0
	for i, res := range results {
		records[i] = FromResult(res)
		if records[i].Error != "" {
			failed++
		}
	}

	meta := SweepMetadata{
		ID:        sweepID,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Kinds:     kinds,
		Points:    len(records),
		Failed:    failed,
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "results.json"), records); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "results.csv"), records); err != nil {
		return "", err
	}
	return sweepID, nil
}

func (s *Store) List() ([]SweepMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SweepMetadata{}, nil
		}
		return nil, err
	}

	sweeps := make([]SweepMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta SweepMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		sweeps = append(sweeps, meta)
	}
	return sweeps, nil
}

func (s *Store) Load(sweepID string) (*SweepMetadata, []Record, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, sweepID, "metadata.json"))
	if err != nil {
		return nil, nil, err
	}
	var meta SweepMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil, err
	}

	data, err = os.ReadFile(filepath.Join(s.baseDir, sweepID, "results.json"))
	if err != nil {
		return nil, nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, err
	}
	return &meta, records, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// csvBundles fixes the column order for the flattened CSV; diagnostic
// bundles vary per engine and stay in the JSON only.
var csvBundles = []string{
	sampler.BundleEnergyError,
	sampler.BundleAngMomentumErr,
	sampler.BundleLinPositionErr,
	sampler.BundleLinVelocityErr,
}

func writeCSV(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"engine", "iterations", "step_size", "mass", "gravity", "force", "tolerance",
		"steps", "passed", "error", "simTime", "wallTime", "energy0", "angMomentum0"}
	kinds := stats.DefaultKinds()
	for _, b := range csvBundles {
		for _, k := range kinds {
			header = append(header, fmt.Sprintf("%s_%s", b, k))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		p := rec.Point
		row := []string{
			p.Engine,
			strconv.Itoa(p.Iterations),
			formatFloat(p.StepSize),
			formatFloat(p.Mass),
			formatFloat(p.Gravity),
			formatFloat(p.Force),
			formatFloat(p.Tolerance),
			strconv.Itoa(rec.Steps),
			strconv.FormatBool(rec.Passed),
			rec.Error,
			formatFloat(rec.Scalars[sweep.ScalarSimTime]),
			formatFloat(rec.Scalars[sweep.ScalarWallTime]),
			formatFloat(rec.Scalars[sweep.ScalarEnergy0]),
			formatFloat(rec.Scalars[sweep.ScalarAngMomentum0]),
		}
		for _, b := range csvBundles {
			for _, k := range kinds {
				row = append(row, formatFloat(rec.Bundles[b][k]))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
