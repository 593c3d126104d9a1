package atlas

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalidAtlas is matched by errors returned from Builder.Build when
// validation finds blocking problems.
var ErrInvalidAtlas = errors.New("atlas: invalid atlas")

// ValidationSeverity indicates whether a finding blocks Build.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks Build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Code     string
	Message  string
	Chart    int // -1 for atlas-level findings
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Chart < 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (chart: %d)", e.Severity, e.Code, e.Message, e.Chart)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// BuildError carries the blocking findings of a failed Build.
type BuildError struct {
	Errors []ValidationError
}

func (e *BuildError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("atlas: %d validation error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *BuildError) Is(target error) bool {
	return target == ErrInvalidAtlas
}

func atlasError(code, format string, args ...any) ValidationError {
	return ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Chart: -1}
}

func chartError(chart int, code, format string, args ...any) ValidationError {
	return ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Chart: chart}
}

// Validate runs the structural checks and returns the blocking findings.
// An empty slice means Build will not reject the topology.
func (b *Builder) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, b.validateCounts()...)
	errs = append(errs, b.validateCharts()...)
	errs = append(errs, b.validatePatches()...)
	errs = append(errs, b.validateEdges()...)
	errs = append(errs, b.validateCorners()...)
	errs = append(errs, b.validateTransitions()...)
	return errs
}

// ValidateAll runs the structural checks plus the advisory ones.
func (b *Builder) ValidateAll() ValidationResult {
	var result ValidationResult
	result.Errors = b.Validate()
	result.Warnings = append(result.Warnings, b.ambiguityWarnings()...)
	result.Warnings = append(result.Warnings, b.sharedEdgeWarnings()...)
	return result
}

func (b *Builder) validateCounts() []ValidationError {
	var errs []ValidationError
	if len(b.charts) == 0 {
		errs = append(errs, atlasError("NO_CHARTS", "atlas has no charts"))
	}
	if len(b.charts) != len(b.patches) {
		errs = append(errs, atlasError("CHART_PATCH_MISMATCH",
			"%d charts but %d patches", len(b.charts), len(b.patches)))
	}
	return errs
}

func (b *Builder) validateCharts() []ValidationError {
	var errs []ValidationError
	for id, c := range b.charts {
		if len(c.Corners) < 3 {
			errs = append(errs, chartError(id, "TOO_FEW_CORNERS",
				"chart has %d corners, need at least 3", len(c.Corners)))
		}
		r := c.rangeOrDefault()
		if !(r.Lo < r.Hi) {
			errs = append(errs, chartError(id, "INVALID_RANGE",
				"range [%g, %g] is empty", r.Lo, r.Hi))
		}
		if id < len(b.patches) && len(b.patches[id].Corners) != len(c.Corners) {
			errs = append(errs, chartError(id, "CORNER_COUNT_MISMATCH",
				"chart has %d corner coordinates, patch has %d corners",
				len(c.Corners), len(b.patches[id].Corners)))
		}
	}
	return errs
}

func (b *Builder) validatePatches() []ValidationError {
	var errs []ValidationError
	for id, p := range b.patches {
		if len(p.Faces) == 0 {
			errs = append(errs, chartError(id, "EMPTY_PATCH", "patch has no faces"))
		}
		for _, c := range p.Corners {
			if c < 0 || c >= len(b.corners) {
				errs = append(errs, chartError(id, "INVALID_CORNER_REF",
					"patch references non-existent corner %d", c))
			}
		}
		for _, e := range p.Edges {
			if e < 0 || e >= len(b.edges) {
				errs = append(errs, chartError(id, "INVALID_EDGE_REF",
					"patch references non-existent edge %d", e))
			}
		}
		for _, n := range p.Neighbors {
			if n < 0 || n >= len(b.patches) || n == id {
				errs = append(errs, chartError(id, "INVALID_NEIGHBOR_REF",
					"patch references invalid neighbor %d", n))
			}
		}
	}
	return errs
}

func (b *Builder) validateEdges() []ValidationError {
	var errs []ValidationError
	for id, e := range b.edges {
		if len(e.Patches) != 1 && len(e.Patches) != 2 {
			errs = append(errs, atlasError("EDGE_PATCH_COUNT",
				"edge %d touches %d patches, want 1 or 2", id, len(e.Patches)))
		}
		for _, p := range e.Patches {
			if p < 0 || p >= len(b.patches) {
				errs = append(errs, atlasError("INVALID_PATCH_REF",
					"edge %d references non-existent patch %d", id, p))
			}
		}
		if len(e.Patches) == 2 && e.Patches[0] == e.Patches[1] {
			errs = append(errs, atlasError("EDGE_SELF_SEAM",
				"edge %d joins patch %d to itself", id, e.Patches[0]))
		}
		if len(e.Path) < 2 {
			errs = append(errs, atlasError("SHORT_EDGE_PATH",
				"edge %d path has %d vertices, need at least 2", id, len(e.Path)))
			continue
		}
		for k, c := range e.Corners {
			if c < 0 || c >= len(b.corners) {
				errs = append(errs, atlasError("INVALID_CORNER_REF",
					"edge %d references non-existent corner %d", id, c))
				continue
			}
			end := e.Path[0]
			if k == 1 {
				end = e.Path[len(e.Path)-1]
			}
			if b.corners[c].Vertex != end {
				errs = append(errs, atlasError("EDGE_PATH_ENDPOINT",
					"edge %d path ends at vertex %d, corner %d is vertex %d",
					id, end, c, b.corners[c].Vertex))
			}
		}
	}
	return errs
}

func (b *Builder) validateCorners() []ValidationError {
	var errs []ValidationError
	used := make([]bool, len(b.corners))
	for _, p := range b.patches {
		for _, c := range p.Corners {
			if c >= 0 && c < len(used) {
				used[c] = true
			}
		}
	}
	seen := make(map[int]int, len(b.corners))
	for id, c := range b.corners {
		if !used[id] {
			errs = append(errs, atlasError("ORPHAN_CORNER",
				"corner %d (vertex %d) belongs to no patch", id, c.Vertex))
		}
		if c.Vertex < 0 {
			errs = append(errs, atlasError("INVALID_CORNER_VERTEX",
				"corner %d has negative vertex %d", id, c.Vertex))
			continue
		}
		if prev, dup := seen[c.Vertex]; dup {
			errs = append(errs, atlasError("DUPLICATE_CORNER",
				"corners %d and %d share vertex %d", prev, id, c.Vertex))
			continue
		}
		seen[c.Vertex] = id
	}
	return errs
}

func (b *Builder) validateTransitions() []ValidationError {
	var errs []ValidationError
	keys := lo.Keys(b.explicit)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, key := range keys {
		t := b.explicit[key]
		from, to := key[0], key[1]
		if from < 0 || from >= len(b.charts) || to < 0 || to >= len(b.charts) {
			errs = append(errs, atlasError("INVALID_TRANSITION_REF",
				"transition %d -> %d references a non-existent chart", from, to))
			continue
		}
		inv, ok := t.Inverse()
		if !ok {
			errs = append(errs, chartError(from, "SINGULAR_TRANSITION",
				"transition %d -> %d is not invertible", from, to))
			continue
		}
		if back, given := b.explicit[[2]int{to, from}]; given && !back.ApproxEqual(inv, 1e-9) {
			errs = append(errs, chartError(from, "INCONSISTENT_TRANSITION",
				"transition %d -> %d is not the inverse of %d -> %d", to, from, from, to))
		}
	}
	return errs
}

func (b *Builder) ambiguityWarnings() []ValidationError {
	var warns []ValidationError
	for _, pair := range b.ambiguousPairs() {
		warns = append(warns, ValidationError{
			Code:     "AMBIGUOUS_CHART_PAIR",
			Message:  fmt.Sprintf("patches %d and %d share more than one edge", pair[0], pair[1]),
			Chart:    pair[0],
			Severity: SeverityWarning,
		})
	}
	return warns
}

func (b *Builder) sharedEdgeWarnings() []ValidationError {
	var warns []ValidationError
	for id, e := range b.edges {
		if len(e.Patches) != 2 || b.hasExplicit(e.Patches[0], e.Patches[1]) {
			continue
		}
		if _, err := b.deriveTransition(e); err != nil {
			warns = append(warns, ValidationError{
				Code:     "UNDERIVABLE_TRANSITION",
				Message:  fmt.Sprintf("edge %d: %v", id, err),
				Chart:    e.Patches[0],
				Severity: SeverityWarning,
			})
		}
	}
	return warns
}
