package emit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// Input is everything Write needs from a generation run.
type Input struct {
	Result  *enumerate.Result
	Events  []design.Event
	Metrics []design.Metric
}

// InputFromSession pairs an enumeration result with the session's
// pass-through declarations.
func InputFromSession(s *design.Session, res *enumerate.Result) Input {
	return Input{Result: res, Events: s.Events(), Metrics: s.Metrics()}
}

// ErrOutputNotEmpty reports an output root that already holds files.
var ErrOutputNotEmpty = errors.New("output directory is not empty")

type config struct {
	logger  *slog.Logger
	replace bool
}

// Option configures Write.
type Option func(*config)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReplace lets Write reuse a non-empty root. Everything a previous
// Write left there is removed first; other files are kept.
func WithReplace() Option {
	return func(c *config) {
		c.replace = true
	}
}

// Write emits every configuration of in.Result under layout and returns
// the manifest it wrote.
//
// An infeasible result still produces the event and metric documents, an
// empty run list, and a header-only manifest.
//
// A root that already holds files is refused with ErrOutputNotEmpty unless
// WithReplace is given, so no stale document or run directory survives
// next to the new manifest.
func Write(ctx context.Context, layout Layout, in Input, opts ...Option) (*Manifest, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if in.Result == nil {
		return nil, fmt.Errorf("emit: nil result")
	}
	res := in.Result
	log := cfg.logger.With("root", layout.Root)

	if err := prepareRoot(layout, cfg.replace); err != nil {
		return nil, err
	}
	for _, dir := range []string{layout.Root, layout.ArchitectureDir(), layout.WorkloadDir(), layout.RunsDir()} {
		if err := os.MkdirAll(dir, dirPerms); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if err := writeDocument(layout.EventPath(), EventDocument(in.Events)); err != nil {
		return nil, err
	}
	if err := writeDocument(layout.MetricPath(), MetricDocument(in.Metrics)); err != nil {
		return nil, err
	}

	// catalog documents, each written once however many pairs use it
	archWritten := make(map[int]bool)
	workWritten := make(map[int]bool)
	m := &Manifest{}
	seen := make(map[enumerate.Pair]bool, len(res.Pairs))
	for _, p := range res.Pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true

		if p.Architecture < 0 || p.Architecture >= len(res.Architectures) {
			return nil, fmt.Errorf("pair references architecture %d of %d", p.Architecture, len(res.Architectures))
		}
		if p.Workload < 0 || p.Workload >= len(res.Workloads) {
			return nil, fmt.Errorf("pair references workload %d of %d", p.Workload, len(res.Workloads))
		}
		if !archWritten[p.Architecture] {
			doc := ArchitectureDocument(res.Architectures[p.Architecture])
			if err := writeDocument(layout.ArchitecturePath(p.Architecture), doc); err != nil {
				return nil, err
			}
			archWritten[p.Architecture] = true
		}
		if !workWritten[p.Workload] {
			doc := WorkloadDocument(res.Workloads[p.Workload])
			if err := writeDocument(layout.WorkloadPath(p.Workload), doc); err != nil {
				return nil, err
			}
			workWritten[p.Workload] = true
		}

		k := len(m.Rows)
		if err := os.MkdirAll(layout.RunDir(k), dirPerms); err != nil {
			return nil, fmt.Errorf("create run directory: %w", err)
		}
		m.Rows = append(m.Rows, Row{
			ArchitectureIndex: p.Architecture,
			ArchitecturePath:  layout.ArchitecturePath(p.Architecture),
			WorkloadIndex:     p.Workload,
			WorkloadPath:      layout.WorkloadPath(p.Workload),
			EventPath:         layout.EventPath(),
			MetricPath:        layout.MetricPath(),
			RunDir:            layout.RunDir(k),
			CheckpointPath:    layout.CheckpointPath(k),
		})
	}
	log.Debug("documents written",
		"architectures", len(archWritten),
		"workloads", len(workWritten))

	if err := writeFileAtomic(layout.RunsPath(), m.RunList()); err != nil {
		return nil, err
	}
	data, err := m.MarshalCSV()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(layout.ManifestPath(), data); err != nil {
		return nil, err
	}

	if len(m.Rows) == 0 {
		log.Warn("no configurations", "manifest", layout.ManifestPath())
	} else {
		log.Info("manifest written",
			"configurations", len(m.Rows),
			"manifest", layout.ManifestPath())
	}
	return m, nil
}

func prepareRoot(layout Layout, replace bool) error {
	entries, err := os.ReadDir(layout.Root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", layout.Root, err)
	case len(entries) == 0:
		return nil
	case !replace:
		return fmt.Errorf("%s: %w", layout.Root, ErrOutputNotEmpty)
	}
	for _, path := range layout.owned() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clear %s: %w", path, err)
		}
	}
	return nil
}

func writeDocument(path string, doc ir.IRObject) error {
	data, err := MarshalYAML(doc)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return writeFile(path, data)
}
