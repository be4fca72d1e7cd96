package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrCorruptRun  = errors.New("storage: malformed run data")
)

var stateHeader = []string{"step", "time", "generation", "id", "mass", "x", "y", "z", "vx", "vy", "vz"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           uint64             `json:"seed"`
	Updater        string             `json:"updater"`
	Integrator     string             `json:"integrator"`
	Generator      string             `json:"generator"`
	Bodies         int                `json:"bodies"`
	Dt             float64            `json:"dt"`
	Steps          int                `json:"steps"`
	SampleEvery    int                `json:"sample_every"`
	G              float64            `json:"g"`
	Softening      float64            `json:"softening"`
	Theta          float64            `json:"theta"`
	UniverseRadius float64            `json:"universe_radius"`
	StepsTaken     int                `json:"steps_taken"`
	EnergyDrift    float64            `json:"energy_drift"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Metrics        map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run ID. ID, Timestamp and the result fields of meta are
// filled in here.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", safeName(meta.Name), now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; exists(runDir); i++ {
		runID = fmt.Sprintf("%s_%d_%d", safeName(meta.Name), now.Unix(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.StepsTaken = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.ElapsedSeconds = result.Elapsed.Seconds()
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStates(csvFile, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteStates writes frames in long format, one row per body per frame.
func WriteStates(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)

	if err := w.Write(stateHeader); err != nil {
		return err
	}

	for _, f := range frames {
		for _, b := range f.Bodies {
			row := []string{
				strconv.Itoa(f.Step),
				formatFloat(f.Time),
				strconv.FormatUint(uint64(b.Generation()), 10),
				strconv.FormatUint(b.ID(), 10),
				formatFloat(b.Mass),
				formatFloat(b.Position.X()),
				formatFloat(b.Position.Y()),
				formatFloat(b.Position.Z()),
				formatFloat(b.Velocity.X()),
				formatFloat(b.Velocity.Y()),
				formatFloat(b.Velocity.Z()),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s metadata: %v", ErrCorruptRun, runID, err)
	}

	return &meta, nil
}

// LoadFrames reads states.csv back into frames. Bodies within a frame keep
// the order they were written in.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	frames, err := ReadStates(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return frames, nil
}

// ReadStates parses the long format written by WriteStates.
func ReadStates(in io.Reader) ([]sim.Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(stateHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0)
	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptRun, i+2, err)
		}

		vals := make([]float64, 0, 8)
		for _, field := range []string{record[1], record[4], record[5], record[6], record[7], record[8], record[9], record[10]} {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptRun, i+2, err)
			}
			vals = append(vals, v)
		}
		gen, err := strconv.ParseUint(record[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptRun, i+2, err)
		}
		id, err := strconv.ParseUint(record[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptRun, i+2, err)
		}

		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, sim.Frame{Step: step, Time: vals[0]})
		}
		f := &frames[len(frames)-1]
		f.Bodies = append(f.Bodies, physics.NewBody(uint32(gen), id,
			geom.Point(vals[2], vals[3], vals[4]),
			geom.Direction(vals[5], vals[6], vals[7]),
			vals[1]))
	}

	return frames, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func safeName(name string) string {
	if name == "" {
		return "run"
	}
	return strings.NewReplacer("/", "-", " ", "_", string(filepath.Separator), "-").Replace(name)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
