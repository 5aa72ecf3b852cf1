package clock

import "go.uber.org/fx"

// Module provides the wall clock. Tests substitute Fixed.
var Module = fx.Module("clock",
	fx.Provide(fx.Annotate(NewSystemClock, fx.As(new(Clock)))),
)

// NewSystemClock returns the wall clock implementation.
func NewSystemClock() SystemClock { return SystemClock{} }
