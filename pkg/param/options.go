package param

import (
	"fmt"
	"io"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/chazu/chartparam/pkg/mesh"
	"github.com/chazu/chartparam/pkg/solver"
)

// FaceRule selects how a face whose vertices disagree on chart picks the
// chart its texture coordinates are emitted in.
type FaceRule string

const (
	// FaceRuleShape picks the nearby chart that least distorts the
	// triangle's corner angles.
	FaceRuleShape FaceRule = "shape"
	// FaceRulePlurality keeps the chart chosen by ResetFaceChartLayout.
	FaceRulePlurality FaceRule = "plurality"
)

// Options controls a parameterization run.
type Options struct {
	// Rounds is the number of solve rounds. Boundary relaxation runs
	// between consecutive rounds.
	Rounds int `yaml:"rounds"`
	// RangeEpsilon widens every chart's valid domain in range tests.
	RangeEpsilon float64 `yaml:"range_epsilon"`
	// CoefficientEpsilon drops transition coefficients smaller than this
	// from the assembled system.
	CoefficientEpsilon float64 `yaml:"coefficient_epsilon"`
	// MaxChartHops bounds the chart-adjacency search for out-of-range
	// vertices.
	MaxChartHops int                `yaml:"max_chart_hops"`
	Laplacian    mesh.LaplacianKind `yaml:"laplacian"`
	Solver       solver.Method      `yaml:"solver"`
	FaceRule     FaceRule           `yaml:"face_rule"`
	// LocateTolerance is the slack on barycentric weights accepted as a hit.
	LocateTolerance float64 `yaml:"locate_tolerance"`

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger `yaml:"-"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Rounds:             5,
		RangeEpsilon:       1e-6,
		CoefficientEpsilon: 1e-10,
		MaxChartHops:       5,
		Laplacian:          mesh.LaplacianCotangent,
		Solver:             solver.MethodAuto,
		FaceRule:           FaceRuleShape,
		LocateTolerance:    1e-6,
	}
}

// LoadOptions decodes YAML over DefaultOptions, so absent keys keep their
// defaults. The result is validated.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("param: decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate reports the first invalid field as an InputError.
func (o Options) Validate() error {
	switch {
	case o.Rounds < 1:
		return inputErrorf("rounds must be at least 1, got %d", o.Rounds)
	case o.RangeEpsilon < 0:
		return inputErrorf("range_epsilon must be non-negative, got %g", o.RangeEpsilon)
	case o.CoefficientEpsilon < 0:
		return inputErrorf("coefficient_epsilon must be non-negative, got %g", o.CoefficientEpsilon)
	case o.MaxChartHops < 0:
		return inputErrorf("max_chart_hops must be non-negative, got %d", o.MaxChartHops)
	case o.LocateTolerance < 0:
		return inputErrorf("locate_tolerance must be non-negative, got %g", o.LocateTolerance)
	case !o.Laplacian.Valid():
		return inputErrorf("unknown laplacian %q", o.Laplacian)
	case !o.Solver.Valid():
		return inputErrorf("unknown solver %q", o.Solver)
	case o.FaceRule != FaceRuleShape && o.FaceRule != FaceRulePlurality:
		return inputErrorf("unknown face_rule %q", o.FaceRule)
	}
	return nil
}
