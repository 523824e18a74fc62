package sim

import "fmt"

// LaserGrid is the wavelength source of the system: an ordered set of laser
// wavelengths exposed on a single OUT port. The grid can be shuffled in
// place — wavelengths replaced wholesale while port connections stay valid —
// which models a new laser burst arriving without re-establishing topology.
type LaserGrid struct {
	wavelengths []float64
	out         *Port
	id          int
}

// NewLaserGrid creates a grid from the given wavelengths (meters). The
// output wave stays empty until TurnOn.
func NewLaserGrid(wavelengths []float64) *LaserGrid {
	grid := &LaserGrid{wavelengths: append([]float64(nil), wavelengths...)}
	grid.out = NewPort(fmt.Sprintf("LaserGrid(%d)", grid.id), "out", PortOut)
	return grid
}

// Out returns the grid's output port.
func (g *LaserGrid) Out() *Port { return g.out }

// NumChannels returns the number of lasers in the grid.
func (g *LaserGrid) NumChannels() int { return len(g.wavelengths) }

// ID identifies the current laser burst; it increments on every shuffle.
func (g *LaserGrid) ID() int { return g.id }

// Wavelengths returns a copy of the grid wavelengths in source order.
func (g *LaserGrid) Wavelengths() []float64 {
	return append([]float64(nil), g.wavelengths...)
}

// TurnOn places the grid wavelengths on the output port.
func (g *LaserGrid) TurnOn() {
	g.out.SetWave(NewWaveSet(g.wavelengths...))
}

// Shuffle replaces the grid wavelengths wholesale. Existing connections stay
// valid; this is cheaper than rebuilding the grid for every burst in a long
// randomized experiment.
func (g *LaserGrid) Shuffle(wavelengths []float64) {
	g.wavelengths = append(g.wavelengths[:0], wavelengths...)
	g.id++
}

func (g *LaserGrid) String() string {
	return fmt.Sprintf("LaserGrid(%d, %v)", g.id, NewWaveSet(g.wavelengths...))
}
