// Package pitch holds the tunable pitch geometry used to gate events by zone.
package pitch

import "fmt"

// Default geometry constants.
const (
	DefaultFieldLength         = 104.0
	DefaultFieldWidth          = 68.0
	DefaultPressLineFraction   = 0.4
	DefaultBuildUpLineFraction = 0.6
)

// Geometry describes the pitch coordinate system and the two zone lines.
type Geometry struct {
	FieldLength float64
	FieldWidth  float64
	// PressLineFraction marks the start of the pressing zone, as a share of FieldLength.
	PressLineFraction float64
	// BuildUpLineFraction marks the end of the opponent build-up zone.
	BuildUpLineFraction float64
}

// Option applies a configuration option to a Geometry.
type Option func(*Geometry)

// WithFieldSize overrides the pitch dimensions.
func WithFieldSize(length, width float64) Option {
	return func(g *Geometry) {
		g.FieldLength = length
		g.FieldWidth = width
	}
}

// WithPressLineFraction overrides the pressing-zone line.
func WithPressLineFraction(f float64) Option {
	return func(g *Geometry) { g.PressLineFraction = f }
}

// WithBuildUpLineFraction overrides the build-up line.
func WithBuildUpLineFraction(f float64) Option {
	return func(g *Geometry) { g.BuildUpLineFraction = f }
}

// Default returns the standard 104x68 geometry.
func Default() Geometry {
	return Geometry{
		FieldLength:         DefaultFieldLength,
		FieldWidth:          DefaultFieldWidth,
		PressLineFraction:   DefaultPressLineFraction,
		BuildUpLineFraction: DefaultBuildUpLineFraction,
	}
}

// New builds a validated Geometry from the defaults and opts.
func New(opts ...Option) (Geometry, error) {
	g := Default()
	for _, opt := range opts {
		opt(&g)
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate checks dimensions are positive and fractions lie in (0, 1).
func (g Geometry) Validate() error {
	if g.FieldLength <= 0 || g.FieldWidth <= 0 {
		return fmt.Errorf("%w: field size %gx%g", ErrInvalidGeometry, g.FieldLength, g.FieldWidth)
	}
	if g.PressLineFraction <= 0 || g.PressLineFraction >= 1 {
		return fmt.Errorf("%w: press line fraction %g", ErrInvalidGeometry, g.PressLineFraction)
	}
	if g.BuildUpLineFraction <= 0 || g.BuildUpLineFraction >= 1 {
		return fmt.Errorf("%w: build-up line fraction %g", ErrInvalidGeometry, g.BuildUpLineFraction)
	}
	return nil
}

// PressLine is the x coordinate past which defensive actions count.
func (g Geometry) PressLine() float64 {
	return g.FieldLength * g.PressLineFraction
}

// BuildUpLine is the x coordinate below which opponent passes count.
func (g Geometry) BuildUpLine() float64 {
	return g.FieldLength * g.BuildUpLineFraction
}

// InPressingZone reports whether x lies strictly beyond the press line.
func (g Geometry) InPressingZone(x float64) bool {
	return x > g.PressLine()
}

// InBuildUpZone reports whether x lies strictly before the build-up line.
func (g Geometry) InBuildUpZone(x float64) bool {
	return x < g.BuildUpLine()
}
