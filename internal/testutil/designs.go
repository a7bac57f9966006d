package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
)

// QuietLogger discards every record.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSession returns an empty session that logs nowhere.
func NewSession(name string) *design.Session {
	return design.NewSession(name, design.WithSessionLogger(QuietLogger()))
}

// Ints converts integers to a sweep domain.
func Ints(ns ...int64) []ir.IRValue {
	out := make([]ir.IRValue, len(ns))
	for i, n := range ns {
		out[i] = ir.IRInt(n)
	}
	return out
}

// IntProduct compares the integers of two sweep values with want(a, b).
func IntProduct(want func(a, b int64) bool) design.ComparisonPredicate {
	return design.Compare(func(src, trg ir.IRValue) bool {
		a, ok := src.(ir.IRInt)
		if !ok {
			return false
		}
		b, ok := trg.(ir.IRInt)
		if !ok {
			return false
		}
		return want(int64(a), int64(b))
	})
}

// declareGEMM declares a single-valued workload so every scenario has one.
func declareGEMM(tb testing.TB, s *design.Session) {
	tb.Helper()
	require.NoError(tb, s.DeclareConfiguration("gemm"))
	require.NoError(tb, s.DeclareConfigurationField("gemm", "m", design.Fixed(ir.IRInt(64))))
}

// ScenarioA: modules mult and acc, instance domains [2,4,8] each, joined by
// a direct constraint without condition. Expect exactly 3 configurations.
func ScenarioA(tb testing.TB) *design.Session {
	tb.Helper()
	s := NewSession("scenario-a")
	require.NoError(tb, s.DeclareAttribute("technology", design.Fixed(ir.IRInt(45))))
	for _, name := range []string{"mult", "acc"} {
		require.NoError(tb, s.DeclareModule(design.Module{
			Names:    []string{name},
			Instance: design.Sweep(Ints(2, 4, 8)...),
			Tags:     []string{name},
		}))
	}
	declareGEMM(tb, s)
	require.NoError(tb, s.AddConstraint(design.Direct,
		ir.Ref("mult", "instance"), ir.Ref("acc", "instance"), design.NoCondition{}))
	return s
}

// ScenarioB: query field width [4,8,16,32] linked to depth [8,16,32,64]
// by width*2 == depth. Expect exactly 4 fragments.
func ScenarioB(tb testing.TB) *design.Session {
	tb.Helper()
	s := NewSession("scenario-b")
	require.NoError(tb, s.DeclareModule(design.Module{
		Names:    []string{"sram"},
		Instance: design.Fixed(ir.IRArray{ir.IRInt(1)}),
		Tags:     []string{"memory"},
		Query: map[string]design.Value{
			"width": design.Sweep(Ints(4, 8, 16, 32)...),
			"depth": design.Sweep(Ints(8, 16, 32, 64)...),
		},
	}))
	declareGEMM(tb, s)
	require.NoError(tb, s.AddConstraint(design.Direct,
		ir.Ref("sram", "width"), ir.Ref("sram", "depth"),
		IntProduct(func(w, d int64) bool { return w*2 == d })))
	return s
}

// ScenarioC: two unconstrained sweeps of size 3, one per document.
// Expect exactly 9 configurations.
func ScenarioC(tb testing.TB) *design.Session {
	tb.Helper()
	s := NewSession("scenario-c")
	require.NoError(tb, s.DeclareAttribute("frequency", design.Sweep(Ints(500, 1000, 2000)...)))
	require.NoError(tb, s.DeclareConfiguration("gemm"))
	require.NoError(tb, s.DeclareConfigurationField("gemm", "m", design.Sweep(Ints(16, 32, 64)...)))
	return s
}

// ScenarioD declares a sweep of 5 values directly constrained to a sweep of
// 3 values and returns the constraint error.
func ScenarioD(tb testing.TB) (*design.Session, error) {
	tb.Helper()
	s := NewSession("scenario-d")
	require.NoError(tb, s.DeclareAttribute("lanes", design.Sweep(Ints(1, 2, 4, 8, 16)...)))
	require.NoError(tb, s.DeclareConfiguration("gemm"))
	require.NoError(tb, s.DeclareConfigurationField("gemm", "tile", design.Sweep(Ints(1, 2, 4)...)))
	err := s.AddConstraint(design.Direct,
		ir.Ref(ir.AttributeOwner, "lanes"), ir.Ref("gemm", "tile"), design.NoCondition{})
	return s, err
}

// Mixed: module pe with instance shapes [2],[4],[8] tied directly to the
// workload tile size [2,4,8], plus fixed fields on both sides. Expect three
// architectures, three workloads, and lockstep pairs (i,i).
func Mixed(tb testing.TB) *design.Session {
	tb.Helper()
	s := NewSession("mixed")
	require.NoError(tb, s.DeclareAttribute("technology", design.Fixed(ir.IRInt(45))))
	require.NoError(tb, s.DeclareModule(design.Module{
		Names: []string{"pe"},
		Instance: design.Fixed(ir.IRArray{
			ir.IRArray{ir.IRInt(2)},
			ir.IRArray{ir.IRInt(4)},
			ir.IRArray{ir.IRInt(8)},
		}),
		Tags: []string{"compute"},
	}))
	require.NoError(tb, s.DeclareConfiguration("gemm"))
	require.NoError(tb, s.DeclareConfigurationField("gemm", "m", design.Fixed(ir.IRInt(64))))
	require.NoError(tb, s.DeclareConfigurationField("gemm", "tile", design.Sweep(Ints(2, 4, 8)...)))
	require.NoError(tb, s.AddConstraint(design.Direct,
		ir.Ref("pe", "instance"), ir.Ref("gemm", "tile"),
		design.Compare(func(src, trg ir.IRValue) bool {
			return ir.Equal(src.(ir.IRArray)[0], trg)
		})))
	return s
}

// Anti: precision [8,16,32] with an anti constraint forbidding precision 32
// together with the small buffer size. Expect 3*2-1 = 5 configurations.
func Anti(tb testing.TB) *design.Session {
	tb.Helper()
	s := NewSession("anti")
	require.NoError(tb, s.DeclareAttribute("precision", design.Sweep(Ints(8, 16, 32)...)))
	require.NoError(tb, s.DeclareAttribute("buffer", design.Sweep(Ints(256, 1024)...)))
	declareGEMM(tb, s)
	require.NoError(tb, s.AddConstraint(design.Anti,
		ir.Ref(ir.AttributeOwner, "precision"), ir.Ref(ir.AttributeOwner, "buffer"),
		IntProduct(func(p, b int64) bool { return p == 32 && b == 256 })))
	return s
}
