package param

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/chartparam/pkg/mesh"
	"github.com/chazu/chartparam/pkg/solver"
)

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, o Options)
		wantErr error
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, o Options) {
				if o.Rounds != 5 || o.Laplacian != mesh.LaplacianCotangent || o.FaceRule != FaceRuleShape {
					t.Errorf("got %+v, want defaults", o)
				}
			},
		},
		{
			name: "overrides",
			yaml: "rounds: 3\nlaplacian: uniform\nsolver: bicgstab\nface_rule: plurality\nrange_epsilon: 0.001\n",
			check: func(t *testing.T, o Options) {
				if o.Rounds != 3 {
					t.Errorf("Rounds = %d, want 3", o.Rounds)
				}
				if o.Laplacian != mesh.LaplacianUniform {
					t.Errorf("Laplacian = %q", o.Laplacian)
				}
				if o.Solver != solver.MethodBiCGSTAB {
					t.Errorf("Solver = %q", o.Solver)
				}
				if o.FaceRule != FaceRulePlurality {
					t.Errorf("FaceRule = %q", o.FaceRule)
				}
				if o.RangeEpsilon != 0.001 {
					t.Errorf("RangeEpsilon = %g", o.RangeEpsilon)
				}
				if o.MaxChartHops != 5 {
					t.Errorf("MaxChartHops = %d, want default 5", o.MaxChartHops)
				}
			},
		},
		{
			name: "unknown field",
			yaml: "bogus: 1\n",
		},
		{
			name:    "zero rounds",
			yaml:    "rounds: 0\n",
			wantErr: ErrInput,
		},
		{
			name:    "unknown laplacian",
			yaml:    "laplacian: spectral\n",
			wantErr: ErrInput,
		},
		{
			name:    "negative epsilon",
			yaml:    "range_epsilon: -1\n",
			wantErr: ErrInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := LoadOptions(strings.NewReader(tt.yaml))
			if tt.check != nil {
				if err != nil {
					t.Fatalf("LoadOptions: %v", err)
				}
				tt.check(t, o)
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	mutations := map[string]func(*Options){
		"hops":      func(o *Options) { o.MaxChartHops = -1 },
		"coef":      func(o *Options) { o.CoefficientEpsilon = -1 },
		"tolerance": func(o *Options) { o.LocateTolerance = -1 },
		"solver":    func(o *Options) { o.Solver = "cholesky" },
		"face rule": func(o *Options) { o.FaceRule = "random" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			mutate(&o)
			var ie *InputError
			if err := o.Validate(); !errors.As(err, &ie) {
				t.Errorf("Validate() = %v, want *InputError", err)
			}
		})
	}
}
