package param

import (
	"errors"
	"fmt"

	"github.com/chazu/chartparam/pkg/atlas"
)

var (
	// ErrInput matches every *InputError: the mesh, atlas, or options
	// cannot be parameterized.
	ErrInput = errors.New("param: invalid input")
	// ErrUnsolvable matches every *SingularSystemError.
	ErrUnsolvable = errors.New("param: unsolvable parameterization")
)

// InputError reports a structural problem found before any solve.
type InputError struct {
	Reason string
	// Problems holds the atlas validation findings when the atlas itself
	// was rejected.
	Problems []atlas.ValidationError
	Err      error
}

func (e *InputError) Error() string {
	msg := "param: invalid input: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputErrorf(format string, args ...any) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// atlasInputError wraps an atlas build failure.
func atlasInputError(err error) *InputError {
	ie := &InputError{Reason: "atlas rejected", Err: err}
	var be *atlas.BuildError
	if errors.As(err, &be) {
		ie.Problems = be.Errors
	}
	return ie
}

// SingularSystemError reports that the linear system of a round could not
// be solved. The whole computation stops.
type SingularSystemError struct {
	Round    int
	Unknowns int
	Err      error
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("param: round %d: system with %d unknowns is unsolvable: %v", e.Round, e.Unknowns, e.Err)
}

func (e *SingularSystemError) Unwrap() error { return e.Err }

func (e *SingularSystemError) Is(target error) bool { return target == ErrUnsolvable }
