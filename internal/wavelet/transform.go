package wavelet

import "fmt"

// Kind tags the transform variant.
type Kind int

const (
	KindContinuous Kind = iota
	KindDiscrete1D
	KindDiscrete2D
)

func (k Kind) String() string {
	switch k {
	case KindContinuous:
		return "continuous"
	case KindDiscrete1D:
		return "discrete-1d"
	case KindDiscrete2D:
		return "discrete-2d"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transform is the capability set shared by every transform variant.
//
// ApplyTo sets the source data, computes the decomposition and returns the
// receiver. ComposeFrom builds a new transform of the same variant from the
// source (or, failing that, the recomposition) of other.
type Transform interface {
	Kind() Kind
	ApplyTo(data any) (Transform, error)
	ComposeFrom(other Transform) (Transform, error)
}

// Continuous is a placeholder for the continuous wavelet transform. It
// carries no state and rejects every operation.
type Continuous struct{}

func (Continuous) Kind() Kind { return KindContinuous }

func (Continuous) ApplyTo(data any) (Transform, error) {
	return nil, fmt.Errorf("continuous transform: %w", ErrUnsupported)
}

func (Continuous) ComposeFrom(other Transform) (Transform, error) {
	return nil, fmt.Errorf("continuous transform: %w", ErrUnsupported)
}

// New returns an empty transform of the given variant.
func New(kind Kind, order Order) (Transform, error) {
	switch kind {
	case KindContinuous:
		return Continuous{}, nil
	case KindDiscrete1D:
		return NewTransform1D(order), nil
	case KindDiscrete2D:
		return NewTransform2D(order), nil
	default:
		return nil, fmt.Errorf("new transform %v: %w", kind, ErrInvalidArgument)
	}
}
