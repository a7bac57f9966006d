package compiler

import (
	"fmt"
	"log/slog"

	"cuelang.org/go/cue"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
)

// Mode controls how errors are handled while compiling a design.
type Mode int

const (
	// FailFast stops on the first error encountered.
	FailFast Mode = iota
	// CollectAll keeps going and returns every error as a *multierror.Error.
	CollectAll
)

// Option configures Compile.
type Option func(*compiler)

// WithMode sets the error handling mode. Default FailFast.
func WithMode(m Mode) Option {
	return func(c *compiler) { c.mode = m }
}

// WithLogger sets the logger handed to the compiled session.
func WithLogger(l *slog.Logger) Option {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName sets the session name used when the design has no name field.
func WithName(name string) Option {
	return func(c *compiler) { c.fallbackName = name }
}

type compiler struct {
	mode         Mode
	logger       *slog.Logger
	fallbackName string

	session *design.Session
	errs    *multierror.Error
}

// Compile parses a design value into a populated session. The value is
// the design struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`design: { architecture: attribute: technology: 45 }`)
//	s, err := Compile(v.LookupPath(cue.ParsePath("design")))
//
// Recognised fields:
//
//	name                        session name (optional)
//	architecture.attribute.<k>  attribute values
//	architecture.module.<name>  {instance, tag, query?, names?}
//	workload.<name>             {configuration: {<field>: value}}
//	event.<name>                {subevent, performance?}
//	metric.<name>               {unit, aggregation}
//	constraint                  list of constraint entries
func Compile(v cue.Value, opts ...Option) (*design.Session, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.Exists() {
		return nil, fieldErr("design", v.Pos(), "design is required")
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, fieldErr("design", v.Pos(), "design must be a struct, got %v", v.IncompleteKind())
	}

	c := &compiler{mode: FailFast, logger: slog.Default(), fallbackName: "design"}
	for _, opt := range opts {
		opt(c)
	}

	name := c.fallbackName
	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		s, err := nv.String()
		if err != nil {
			return nil, fieldErr("name", nv.Pos(), "name must be a string")
		}
		name = s
	}
	c.session = design.NewSession(name, design.WithSessionLogger(c.logger))

	steps := []func(cue.Value) error{
		c.compileAttributes,
		c.compileModules,
		c.compileWorkloads,
		c.compileEvents,
		c.compileMetrics,
		c.compileConstraints,
	}
	for _, step := range steps {
		if err := step(v); err != nil {
			return nil, err
		}
	}
	if err := c.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	stats := c.session.Stats()
	c.logger.Debug("design compiled",
		"name", name,
		"parameters", stats.Parameters,
		"sweeps", stats.Sweeps,
		"constraints", stats.Constraints)
	return c.session, nil
}

// fail records err. It returns err in FailFast mode so the caller stops,
// and nil in CollectAll mode so the caller moves on.
func (c *compiler) fail(err error) error {
	if c.mode == FailFast {
		return err
	}
	c.errs = multierror.Append(c.errs, err)
	return nil
}

// fields iterates the regular fields of the struct at path, if present.
func (c *compiler) fields(v cue.Value, path string, fn func(label string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return c.fail(fieldErr(path, sv.Pos(), "%s must be a struct", path))
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileAttributes(v cue.Value) error {
	return c.fields(v, "architecture.attribute", func(key string, fv cue.Value) error {
		field := "attribute." + key
		val, err := parseValue(field, fv)
		if err != nil {
			return c.fail(err)
		}
		if err := c.session.DeclareAttribute(key, val); err != nil {
			return c.fail(wrapErr(field, fv.Pos(), err))
		}
		return nil
	})
}

func (c *compiler) compileModules(v cue.Value) error {
	return c.fields(v, "architecture.module", func(name string, mv cue.Value) error {
		field := "module." + name
		m, err := parseModule(field, name, mv)
		if err != nil {
			return c.fail(err)
		}
		if err := c.session.DeclareModule(m); err != nil {
			return c.fail(wrapErr(field, mv.Pos(), err))
		}
		return nil
	})
}

// parseModule reads {instance, tag, query?, names?}. names declares several
// modules sharing one shape; without it the struct label is the module name.
func parseModule(field, name string, mv cue.Value) (design.Module, error) {
	m := design.Module{Names: []string{name}}

	if nv := mv.LookupPath(cue.ParsePath("names")); nv.Exists() {
		names, err := stringList(nv)
		if err != nil {
			return m, fieldErr(field+".names", nv.Pos(), "%v", err)
		}
		m.Names = names
	}

	iv := mv.LookupPath(cue.ParsePath("instance"))
	if !iv.Exists() {
		return m, fieldErr(field+".instance", mv.Pos(), "instance is required")
	}
	instance, err := parseValue(field+".instance", iv)
	if err != nil {
		return m, err
	}
	m.Instance = instance

	tv := mv.LookupPath(cue.ParsePath("tag"))
	if !tv.Exists() {
		return m, fieldErr(field+".tag", mv.Pos(), "tag is required")
	}
	tags, err := stringList(tv)
	if err != nil {
		return m, fieldErr(field+".tag", tv.Pos(), "%v", err)
	}
	m.Tags = tags

	if qv := mv.LookupPath(cue.ParsePath("query")); qv.Exists() {
		iter, err := qv.Fields()
		if err != nil {
			return m, fieldErr(field+".query", qv.Pos(), "query must be a struct")
		}
		m.Query = make(map[string]design.Value)
		for iter.Next() {
			val, err := parseValue(field+".query."+iter.Label(), iter.Value())
			if err != nil {
				return m, err
			}
			m.Query[iter.Label()] = val
		}
	}
	return m, nil
}

func (c *compiler) compileWorkloads(v cue.Value) error {
	return c.fields(v, "workload", func(name string, wv cue.Value) error {
		field := "workload." + name
		if err := c.session.DeclareConfiguration(name); err != nil {
			return c.fail(wrapErr(field, wv.Pos(), err))
		}
		cv := wv.LookupPath(cue.ParsePath("configuration"))
		if !cv.Exists() {
			return c.fail(fieldErr(field+".configuration", wv.Pos(), "configuration is required"))
		}
		iter, err := cv.Fields()
		if err != nil {
			return c.fail(fieldErr(field+".configuration", cv.Pos(), "configuration must be a struct"))
		}
		for iter.Next() {
			key := iter.Label()
			ff := field + ".configuration." + key
			val, err := parseValue(ff, iter.Value())
			if err != nil {
				if err := c.fail(err); err != nil {
					return err
				}
				continue
			}
			if err := c.session.DeclareConfigurationField(name, key, val); err != nil {
				if err := c.fail(wrapErr(ff, iter.Value().Pos(), err)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (c *compiler) compileEvents(v cue.Value) error {
	return c.fields(v, "event", func(name string, ev cue.Value) error {
		field := "event." + name
		e := design.Event{Name: name}
		if sv := ev.LookupPath(cue.ParsePath("subevent")); sv.Exists() {
			subs, err := stringList(sv)
			if err != nil {
				return c.fail(fieldErr(field+".subevent", sv.Pos(), "%v", err))
			}
			e.Subevents = subs
		}
		if pv := ev.LookupPath(cue.ParsePath("performance")); pv.Exists() {
			p, err := pv.String()
			if err != nil {
				return c.fail(fieldErr(field+".performance", pv.Pos(), "performance must be a string"))
			}
			e.Performance = p
		}
		if err := c.session.DeclareEvent(e); err != nil {
			return c.fail(wrapErr(field, ev.Pos(), err))
		}
		return nil
	})
}

func (c *compiler) compileMetrics(v cue.Value) error {
	return c.fields(v, "metric", func(name string, mv cue.Value) error {
		field := "metric." + name
		unit, err := stringField(mv, "unit")
		if err != nil {
			return c.fail(fieldErr(field+".unit", mv.Pos(), "%v", err))
		}
		agg, err := stringField(mv, "aggregation")
		if err != nil {
			return c.fail(fieldErr(field+".aggregation", mv.Pos(), "%v", err))
		}
		m := design.Metric{Name: name, Unit: unit, Aggregation: agg}
		if err := c.session.DeclareMetric(m); err != nil {
			return c.fail(wrapErr(field, mv.Pos(), err))
		}
		return nil
	})
}

func (c *compiler) compileConstraints(v cue.Value) error {
	lv := v.LookupPath(cue.ParsePath("constraint"))
	if !lv.Exists() {
		return nil
	}
	iter, err := lv.List()
	if err != nil {
		return c.fail(fieldErr("constraint", lv.Pos(), "constraint must be a list"))
	}
	for n := 0; iter.Next(); n++ {
		field := fmt.Sprintf("constraint[%d]", n)
		if err := c.compileConstraint(field, iter.Value()); err != nil {
			if err := c.fail(err); err != nil {
				return err
			}
		}
	}
	return nil
}

// compileConstraint reads one entry:
//
//	{kind?, source: {owner, field}, target: {owner, field}, index?: "...", compare?: "..."}
//	{kind?, group: {<owner>: [<field>, ...]}, index?: "...", compare?: "..."}
func (c *compiler) compileConstraint(field string, cv cue.Value) error {
	kindName := ""
	if kv := cv.LookupPath(cue.ParsePath("kind")); kv.Exists() {
		s, err := kv.String()
		if err != nil {
			return fieldErr(field+".kind", kv.Pos(), "kind must be a string")
		}
		kindName = s
	}
	kind, err := design.ParseKind(kindName)
	if err != nil {
		return fieldErr(field+".kind", cv.Pos(), "%v", err)
	}

	cond, err := parseCondition(field, cv)
	if err != nil {
		return err
	}

	if gv := cv.LookupPath(cue.ParsePath("group")); gv.Exists() {
		refs, err := groupRefs(gv)
		if err != nil {
			return fieldErr(field+".group", gv.Pos(), "%v", err)
		}
		if err := c.session.AddGroupConstraint(kind, cond, refs...); err != nil {
			return wrapErr(field, cv.Pos(), err)
		}
		return nil
	}

	src, err := fieldRef(cv, "source")
	if err != nil {
		return fieldErr(field+".source", cv.Pos(), "%v", err)
	}
	trg, err := fieldRef(cv, "target")
	if err != nil {
		return fieldErr(field+".target", cv.Pos(), "%v", err)
	}
	if err := c.session.AddConstraint(kind, src, trg, cond); err != nil {
		return wrapErr(field, cv.Pos(), err)
	}
	return nil
}

func parseCondition(field string, cv cue.Value) (design.Condition, error) {
	iv := cv.LookupPath(cue.ParsePath("index"))
	gv := cv.LookupPath(cue.ParsePath("compare"))
	switch {
	case iv.Exists() && gv.Exists():
		return nil, fieldErr(field, cv.Pos(), "constraint takes index or compare, not both")

	case iv.Exists():
		src, err := iv.String()
		if err != nil {
			return nil, fieldErr(field+".index", iv.Pos(), "index must be an expression string")
		}
		p, err := indexPredicate(cv.Context(), src)
		if err != nil {
			return nil, fieldErr(field+".index", iv.Pos(), "%v", err)
		}
		return p, nil

	case gv.Exists():
		src, err := gv.String()
		if err != nil {
			return nil, fieldErr(field+".compare", gv.Pos(), "compare must be an expression string")
		}
		p, err := comparisonPredicate(cv.Context(), src)
		if err != nil {
			return nil, fieldErr(field+".compare", gv.Pos(), "%v", err)
		}
		return p, nil

	default:
		return design.NoCondition{}, nil
	}
}

// groupRefs flattens {owner: [fields]} in declaration order.
func groupRefs(gv cue.Value) ([]ir.FieldRef, error) {
	iter, err := gv.Fields()
	if err != nil {
		return nil, fmt.Errorf("group must map owners to field lists")
	}
	var refs []ir.FieldRef
	for iter.Next() {
		fields, err := stringList(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", iter.Label(), err)
		}
		for _, f := range fields {
			refs = append(refs, ir.Ref(iter.Label(), f))
		}
	}
	return refs, nil
}

func fieldRef(cv cue.Value, label string) (ir.FieldRef, error) {
	rv := cv.LookupPath(cue.ParsePath(label))
	if !rv.Exists() {
		return ir.FieldRef{}, fmt.Errorf("%s is required", label)
	}
	owner, err := stringField(rv, "owner")
	if err != nil {
		return ir.FieldRef{}, err
	}
	f, err := stringField(rv, "field")
	if err != nil {
		return ir.FieldRef{}, err
	}
	return ir.Ref(owner, f), nil
}

func stringField(v cue.Value, label string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(label))
	if !fv.Exists() {
		return "", fmt.Errorf("%s is required", label)
	}
	s, err := fv.String()
	if err != nil {
		return "", fmt.Errorf("%s must be a string", label)
	}
	return s, nil
}

// stringList accepts a string or a list of strings.
func stringList(v cue.Value) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, fmt.Errorf("want a string or a list of strings")
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fmt.Errorf("want a string or a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func countFields(v cue.Value) int {
	iter, err := v.Fields()
	if err != nil {
		return 0
	}
	n := 0
	for iter.Next() {
		n++
	}
	return n
}
