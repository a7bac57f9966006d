package emit

import (
	"fmt"
	"path/filepath"
)

// Layout resolves every output path beneath Root.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// ArchitectureDir holds one document per architecture catalog entry.
func (l Layout) ArchitectureDir() string { return filepath.Join(l.Root, "architecture") }

// WorkloadDir holds one document per workload catalog entry.
func (l Layout) WorkloadDir() string { return filepath.Join(l.Root, "workload") }

// RunsDir holds one output directory per configuration.
func (l Layout) RunsDir() string { return filepath.Join(l.Root, "runs") }

// ArchitecturePath is the document for architecture catalog index i.
func (l Layout) ArchitecturePath(i int) string {
	return filepath.Join(l.ArchitectureDir(), fmt.Sprintf("config_%d.architecture.yaml", i))
}

// WorkloadPath is the document for workload catalog index j.
func (l Layout) WorkloadPath(j int) string {
	return filepath.Join(l.WorkloadDir(), fmt.Sprintf("config_%d.workload.yaml", j))
}

// EventPath is the shared event document.
func (l Layout) EventPath() string { return filepath.Join(l.Root, "event", "event.yaml") }

// MetricPath is the shared metric document.
func (l Layout) MetricPath() string { return filepath.Join(l.Root, "metric", "metric.yaml") }

// RunDir is the output directory of configuration k.
func (l Layout) RunDir(k int) string {
	return filepath.Join(l.RunsDir(), fmt.Sprintf("config_%d", k))
}

// CheckpointPath is the checkpoint artifact of configuration k.
func (l Layout) CheckpointPath(k int) string {
	return filepath.Join(l.RunDir(k), "checkpoint.gt")
}

// RunsPath is the run-invocation list.
func (l Layout) RunsPath() string { return filepath.Join(l.Root, "runs.txt") }

// ManifestPath is the configuration manifest.
func (l Layout) ManifestPath() string { return filepath.Join(l.Root, "manifest.csv") }

// owned lists every top-level entry Write creates under Root.
func (l Layout) owned() []string {
	return []string{
		l.ArchitectureDir(),
		l.WorkloadDir(),
		l.RunsDir(),
		filepath.Dir(l.EventPath()),
		filepath.Dir(l.MetricPath()),
		l.RunsPath(),
		l.ManifestPath(),
	}
}
