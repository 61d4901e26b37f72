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

	"github.com/google/uuid"

	"github.com/san-kum/scenecheck/internal/scenario"
)

const (
	metadataFile = "metadata.json"
	recordFile   = "record.json"
)

var ErrNotFound = errors.New("storage: record not found")

// Store keeps one directory per saved record, holding the encoded record and
// a small metadata file for listing.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RecordMetadata struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	Source    string    `json:"source"`
	SDCID     string    `json:"sdc_id"`
	Length    int       `json:"length"`
	Tracks    int       `json:"tracks"`
	Timestamp time.Time `json:"timestamp"`
}

// Save writes rec under a new time-ordered id and returns the id.
func (s *Store) Save(rec *scenario.Record) (string, error) {
	if err := scenario.SanityCheck(rec); err != nil {
		return "", err
	}
	data, err := scenario.Marshal(rec)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.baseDir, id.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, recordFile), data, 0644); err != nil {
		return "", err
	}

	meta := RecordMetadata{
		ID:        id.String(),
		Scenario:  rec.Metadata.ID,
		Source:    rec.Metadata.Source,
		SDCID:     rec.Metadata.SDCID,
		Length:    rec.Length,
		Tracks:    len(rec.Tracks),
		Timestamp: time.Now().UTC(),
	}
	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every saved record, oldest first.
func (s *Store) List() ([]RecordMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecordMetadata{}, nil
		}
		return nil, err
	}

	out := make([]RecordMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Metadata(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Metadata(id string) (*RecordMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, notFound(id, err)
	}
	var meta RecordMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", id, err)
	}
	return &meta, nil
}

// Load decodes a saved record. The record is returned as stored; callers
// sanity-check it before use.
func (s *Store) Load(id string) (*scenario.Record, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, recordFile))
	if err != nil {
		return nil, notFound(id, err)
	}
	return scenario.Unmarshal(data)
}

// Resolve loads a record by store id, falling back to treating ref as a
// path to an encoded record file.
func (s *Store) Resolve(ref string) (*scenario.Record, error) {
	rec, err := s.Load(ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	return ReadFile(ref)
}

func ReadFile(path string) (*scenario.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec, err := scenario.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func WriteFile(path string, rec *scenario.Record) error {
	data, err := scenario.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func notFound(id string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

var trackHeader = []string{"t", "x", "y", "z", "heading", "vx", "vy", "length", "width", "height", "valid"}

// ExportTrackCSV writes one track's state, one row per timestep. Control
// echoes follow as extra columns in sorted name order.
func ExportTrackCSV(path string, tr *scenario.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	s := tr.State
	controls := s.ControlNames()
	if err := w.Write(append(append([]string{}, trackHeader...), controls...)); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := 0; i < s.Len(); i++ {
		p, v, sz := s.Position[i], s.Velocity[i], s.Size[i]
		row := []string{
			strconv.Itoa(i),
			ff(p.X), ff(p.Y), ff(p.Z),
			ff(s.Heading[i]),
			ff(v.X), ff(v.Y),
			ff(sz.X), ff(sz.Y), ff(sz.Z),
			strconv.FormatBool(s.Valid[i]),
		}
		for _, name := range controls {
			row = append(row, ff(s.Controls[name][i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadTrackCSV reads the planar positions back from an exported track.
func LoadTrackCSV(path string) ([][2]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][2]float64{}, nil
	}

	out := make([][2]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		x, errX := strconv.ParseFloat(rec[1], 64)
		y, errY := strconv.ParseFloat(rec[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		out = append(out, [2]float64{x, y})
	}
	return out, nil
}
