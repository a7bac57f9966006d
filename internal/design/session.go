package design

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/archgen/internal/graph"
	"github.com/roach88/archgen/internal/ir"
)

// entity is the kind of declaration that owns a set of fields.
type entity int

const (
	entityAttribute entity = iota
	entityModule
	entityConfiguration
)

func (e entity) String() string {
	switch e {
	case entityModule:
		return "module"
	case entityConfiguration:
		return "configuration"
	default:
		return "attribute"
	}
}

// Module describes one or more architecture modules sharing a shape.
type Module struct {
	// Names lists the modules to declare. Each becomes its own owner.
	Names []string
	// Instance is the module shape. A fixed list whose first element is a
	// list or mapping is treated as a sweep over its elements.
	Instance Value
	// Tags are written as the module's tag list. Never swept.
	Tags []string
	// Query holds the module's query fields.
	Query map[string]Value
}

// Event is a pass-through event declaration.
type Event struct {
	Name        string   `json:"name"`
	Subevents   []string `json:"subevent"`
	Performance string   `json:"performance,omitempty"`
}

// Metric is a pass-through metric declaration.
type Metric struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Aggregation string `json:"aggregation"`
}

// Session owns every declaration of one generation run: the parameters,
// the constraint graph over them, and the pass-through event and metric
// entries. A Session is not safe for concurrent use.
type Session struct {
	name   string
	logger *slog.Logger

	graph  *graph.Graph[Parameter, Constraint]
	index  map[ir.FieldRef]graph.VertexID
	owners map[string]entity

	events  []Event
	metrics []Metric
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for declaration diagnostics.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession returns an empty session named name.
func NewSession(name string, opts ...SessionOption) *Session {
	s := &Session{
		name:   name,
		logger: slog.Default(),
		graph:  graph.New[Parameter, Constraint](),
		index:  make(map[ir.FieldRef]graph.VertexID),
		owners: map[string]entity{ir.AttributeOwner: entityAttribute},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// DeclareAttribute declares an architecture-wide attribute.
func (s *Session) DeclareAttribute(key string, v Value) error {
	return s.addParameter(ir.Ref(ir.AttributeOwner, key), ir.KindAttribute, v)
}

// DeclareModule declares every module named in m.
func (s *Session) DeclareModule(m Module) error {
	if len(m.Names) == 0 {
		return schemaErr(ErrCodeEmptyName, ir.FieldRef{}, "module declaration has no names")
	}
	if len(m.Tags) == 0 {
		return schemaErr(ErrCodeEmptyDomain, ir.Ref(m.Names[0], "tag"), "module needs at least one tag")
	}

	tags := make(ir.IRArray, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = ir.IRString(t)
	}
	instance := instanceValue(m.Instance)

	queryKeys := make([]string, 0, len(m.Query))
	for k := range m.Query {
		queryKeys = append(queryKeys, k)
	}
	slices.Sort(queryKeys)

	for _, name := range m.Names {
		if err := s.addOwner(name, entityModule); err != nil {
			return err
		}
		if err := s.addParameter(ir.Ref(name, "instance"), ir.KindInstance, instance); err != nil {
			return err
		}
		if err := s.addParameter(ir.Ref(name, "tag"), ir.KindTag, Fixed(tags)); err != nil {
			return err
		}
		for _, k := range queryKeys {
			if err := s.addParameter(ir.Ref(name, k), ir.KindQuery, m.Query[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeclareConfiguration declares a workload configuration owner.
func (s *Session) DeclareConfiguration(name string) error {
	return s.addOwner(name, entityConfiguration)
}

// DeclareConfigurationField declares one field of a declared configuration.
func (s *Session) DeclareConfigurationField(configuration, field string, v Value) error {
	ref := ir.Ref(configuration, field)
	if kind, ok := s.owners[configuration]; !ok || kind != entityConfiguration {
		return schemaErr(ErrCodeMissingOwner, ref, "configuration %q is not declared", configuration)
	}
	return s.addParameter(ref, ir.KindConfiguration, v)
}

// DeclareEvent records a pass-through event entry.
func (s *Session) DeclareEvent(e Event) error {
	if e.Name == "" {
		return schemaErr(ErrCodeEmptyName, ir.FieldRef{}, "event has no name")
	}
	if slices.ContainsFunc(s.events, func(x Event) bool { return x.Name == e.Name }) {
		return schemaErr(ErrCodeDuplicateEntry, ir.FieldRef{}, "event %q already declared", e.Name)
	}
	e.Subevents = slices.Clone(e.Subevents)
	s.events = append(s.events, e)
	return nil
}

// DeclareMetric records a pass-through metric entry.
func (s *Session) DeclareMetric(m Metric) error {
	if m.Name == "" {
		return schemaErr(ErrCodeEmptyName, ir.FieldRef{}, "metric has no name")
	}
	if slices.ContainsFunc(s.metrics, func(x Metric) bool { return x.Name == m.Name }) {
		return schemaErr(ErrCodeDuplicateEntry, ir.FieldRef{}, "metric %q already declared", m.Name)
	}
	s.metrics = append(s.metrics, m)
	return nil
}

// AddConstraint adds one constraint edge from src to trg and resolves its
// legal (or, for Anti, forbidden) position pairs immediately.
func (s *Session) AddConstraint(kind Kind, src, trg ir.FieldRef, cond Condition) error {
	fail := func(code ErrorCode, format string, args ...any) error {
		return &ConstraintError{Code: code, Kind: kind, Source: src, Target: trg, Message: fmt.Sprintf(format, args...)}
	}

	sv, ok := s.index[src]
	if !ok {
		return fail(ErrCodeUnknownField, "source %s is not declared", src)
	}
	tv, ok := s.index[trg]
	if !ok {
		return fail(ErrCodeUnknownField, "target %s is not declared", trg)
	}
	if sv == tv {
		return fail(ErrCodeSelfConstraint, "a field cannot constrain itself")
	}

	sp := s.graph.MustVertex(sv)
	tp := s.graph.MustVertex(tv)
	if !sp.Sweep {
		return fail(ErrCodeNotSweep, "source %s is not a sweep", src)
	}
	if !tp.Sweep {
		return fail(ErrCodeNotSweep, "target %s is not a sweep", trg)
	}
	if existing, ok := s.graph.EdgeBetween(sv, tv); ok {
		return fail(ErrCodeDuplicateConstraint, "fields already joined by a %s constraint", existing.Data.Kind)
	}

	if cond == nil {
		cond = NoCondition{}
	}
	pairs, err := resolvePairs(kind, cond, sp, tp)
	if err != nil {
		return err
	}

	c := Constraint{Kind: kind, Source: src, Target: trg, Condition: cond, Pairs: pairs}
	if _, err := s.graph.AddEdge(sv, tv, c); err != nil {
		return fail(ErrCodeDuplicateConstraint, "%v", err)
	}

	s.logger.Debug("constraint added",
		"kind", kind.String(),
		"source", src.String(),
		"target", trg.String(),
		"pairs", len(pairs))
	return nil
}

// AddGroupConstraint links every listed field to every other one, in
// listing order: for refs a, b, c the edges are a-b, a-c, b-c.
func (s *Session) AddGroupConstraint(kind Kind, cond Condition, refs ...ir.FieldRef) error {
	if len(refs) < 2 {
		return &ConstraintError{
			Code:    ErrCodeUnknownField,
			Kind:    kind,
			Message: fmt.Sprintf("group needs at least two fields, got %d", len(refs)),
		}
	}
	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			if err := s.AddConstraint(kind, refs[i], refs[j], cond); err != nil {
				return err
			}
		}
	}
	return nil
}

// Parameter returns the parameter declared under ref.
func (s *Session) Parameter(ref ir.FieldRef) (Parameter, bool) {
	v, ok := s.index[ref]
	if !ok {
		return Parameter{}, false
	}
	return s.graph.Vertex(v)
}

// Parameters returns every parameter in declaration order.
func (s *Session) Parameters() []Parameter {
	ids := s.graph.Vertices()
	out := make([]Parameter, len(ids))
	for i, id := range ids {
		out[i] = s.graph.MustVertex(id)
	}
	return out
}

// Constraints returns every constraint in the order added.
func (s *Session) Constraints() []Constraint {
	edges := s.graph.Edges()
	out := make([]Constraint, len(edges))
	for i, e := range edges {
		out[i] = e.Data
	}
	return out
}

// Graph returns the constraint graph. Vertices are parameters in
// declaration order; edges are resolved constraints. Callers must not
// mutate it.
func (s *Session) Graph() *graph.Graph[Parameter, Constraint] {
	return s.graph
}

// Events returns the declared events in declaration order.
func (s *Session) Events() []Event { return slices.Clone(s.events) }

// Metrics returns the declared metrics in declaration order.
func (s *Session) Metrics() []Metric { return slices.Clone(s.metrics) }

// Stats summarizes a session.
type Stats struct {
	Parameters  int `json:"parameters"`
	Sweeps      int `json:"sweeps"`
	Constraints int `json:"constraints"`
	// NaiveSpace is the product of all domain sizes, saturating at MaxInt.
	NaiveSpace int `json:"naive_space"`
}

// Stats returns parameter, sweep, and constraint counts.
func (s *Session) Stats() Stats {
	st := Stats{Constraints: s.graph.EdgeCount(), NaiveSpace: 1}
	for _, p := range s.Parameters() {
		st.Parameters++
		if p.Sweep {
			st.Sweeps++
		}
		st.NaiveSpace = saturatingMul(st.NaiveSpace, p.Size())
	}
	return st
}

func saturatingMul(a, b int) int {
	const maxInt = int(^uint(0) >> 1)
	if a != 0 && b > maxInt/a {
		return maxInt
	}
	return a * b
}

func (s *Session) addOwner(name string, kind entity) error {
	ref := ir.Ref(name, "")
	if name == "" {
		return schemaErr(ErrCodeEmptyName, ref, "owner name is empty")
	}
	if name == ir.AttributeOwner {
		return schemaErr(ErrCodeReservedName, ref, "%q is reserved for attributes", name)
	}
	if existing, ok := s.owners[name]; ok {
		return schemaErr(ErrCodeDuplicateOwner, ref, "already declared as a %s", existing)
	}
	s.owners[name] = kind
	return nil
}

func (s *Session) addParameter(ref ir.FieldRef, kind ir.FieldKind, v Value) error {
	if ref.Field == "" {
		return schemaErr(ErrCodeEmptyName, ref, "field name is empty")
	}
	if _, ok := s.index[ref]; ok {
		return schemaErr(ErrCodeDuplicateField, ref, "field already declared")
	}
	p, err := newParameter(ref, kind, v)
	if err != nil {
		return err
	}
	s.index[ref] = s.graph.AddVertex(p)
	return nil
}

// Validate reports problems no single declaration can see. Currently a
// configuration declared without fields. All problems are collected.
func (s *Session) Validate() error {
	fields := make(map[string]int)
	for ref := range s.index {
		fields[ref.Owner]++
	}
	owners := make([]string, 0, len(s.owners))
	for name := range s.owners {
		owners = append(owners, name)
	}
	slices.Sort(owners)

	var result *multierror.Error
	for _, name := range owners {
		if s.owners[name] == entityConfiguration && fields[name] == 0 {
			result = multierror.Append(result,
				schemaErr(ErrCodeMissingOwner, ir.Ref(name, ""), "configuration has no fields"))
		}
	}
	return result.ErrorOrNil()
}
