package emit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ManifestHeader is the first row of manifest.csv.
var ManifestHeader = []string{
	"architecture_index",
	"architecture_path",
	"workload_index",
	"workload_path",
	"event_path",
	"metric_path",
	"run_dir",
	"checkpoint_path",
}

// Row is one emitted configuration.
type Row struct {
	ArchitectureIndex int    `json:"architecture_index"`
	ArchitecturePath  string `json:"architecture_path"`
	WorkloadIndex     int    `json:"workload_index"`
	WorkloadPath      string `json:"workload_path"`
	EventPath         string `json:"event_path"`
	MetricPath        string `json:"metric_path"`
	RunDir            string `json:"run_dir"`
	CheckpointPath    string `json:"checkpoint_path"`
}

// Record returns the row as CSV fields in header order.
func (r Row) Record() []string {
	return []string{
		strconv.Itoa(r.ArchitectureIndex),
		r.ArchitecturePath,
		strconv.Itoa(r.WorkloadIndex),
		r.WorkloadPath,
		r.EventPath,
		r.MetricPath,
		r.RunDir,
		r.CheckpointPath,
	}
}

// Invocation returns the run-list line for the row.
func (r Row) Invocation() string {
	return strings.Join([]string{
		"-a", r.ArchitecturePath,
		"-e", r.EventPath,
		"-m", r.MetricPath,
		"-r", r.RunDir,
		"-w", r.WorkloadPath,
		"-c", r.CheckpointPath,
		"-s",
	}, " ")
}

// Manifest is the full list of emitted configurations.
type Manifest struct {
	Rows []Row `json:"rows"`
}

// MarshalCSV renders the manifest with its header.
func (m *Manifest) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ManifestHeader); err != nil {
		return nil, err
	}
	for _, r := range m.Rows {
		if err := w.Write(r.Record()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// RunList renders one invocation line per row.
func (m *Manifest) RunList() []byte {
	var buf bytes.Buffer
	for _, r := range m.Rows {
		buf.WriteString(r.Invocation())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ReadManifest parses a manifest written by Write.
func ReadManifest(r io.Reader) (*Manifest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ManifestHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	for i, name := range ManifestHeader {
		if header[i] != name {
			return nil, fmt.Errorf("manifest header column %d: expected %q, got %q", i, name, header[i])
		}
	}

	m := &Manifest{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest row %d: %w", line, err)
		}
		ai, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("manifest row %d: architecture index: %w", line, err)
		}
		wi, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("manifest row %d: workload index: %w", line, err)
		}
		m.Rows = append(m.Rows, Row{
			ArchitectureIndex: ai,
			ArchitecturePath:  rec[1],
			WorkloadIndex:     wi,
			WorkloadPath:      rec[3],
			EventPath:         rec[4],
			MetricPath:        rec[5],
			RunDir:            rec[6],
			CheckpointPath:    rec[7],
		})
	}
	return m, nil
}

// ReadManifestFile parses the manifest at path.
func ReadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return ReadManifest(f)
}
