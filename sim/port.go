package sim

import "fmt"

// PortDir is the direction of an optical port.
type PortDir int

const (
	// PortIn receives a wave from an upstream OUT port.
	PortIn PortDir = iota
	// PortOut produces a wave locally.
	PortOut
)

func (d PortDir) String() string {
	if d == PortIn {
		return "in"
	}
	return "out"
}

// Port is a unidirectional point-to-point optical attachment point on a
// device. It establishes logical connectivity and carries the WaveSet
// present on that leg of the topology.
//
// Only IN ports accept a connection and only OUT ports can be a connection
// source. An IN port's wave is copied from its connection exclusively during
// an explicit propagation step; an OUT port's wave is set by its owning
// device.
type Port struct {
	device string
	name   string
	dir    PortDir

	conn *Port
	wave WaveSet
}

// NewPort creates a disconnected port carrying an empty WaveSet. The device
// name is used only for diagnostics.
func NewPort(device, name string, dir PortDir) *Port {
	return &Port{device: device, name: name, dir: dir, wave: NewWaveSet()}
}

func (p *Port) String() string {
	return fmt.Sprintf("Port(%s:%s)", p.device, p.name)
}

// Dir returns the port direction.
func (p *Port) Dir() PortDir { return p.dir }

// IsConnected reports whether an upstream connection has been established.
func (p *Port) IsConnected() bool { return p.conn != nil }

// Wave returns the WaveSet currently present on the port.
func (p *Port) Wave() WaveSet { return p.wave }

// SetWave places a WaveSet on the port. Used by the owning device for OUT
// ports and by lock/release updates on THRU ports.
func (p *Port) SetWave(w WaveSet) { p.wave = w }

// ConnectFrom establishes the unidirectional connection from an upstream
// OUT port into this IN port. Wiring mistakes are programmer errors and
// panic immediately.
func (p *Port) ConnectFrom(from *Port) {
	if from.dir != PortOut {
		panic(fmt.Sprintf("sim: %v cannot source a connection, only OUT ports can", from))
	}
	if p.dir != PortIn {
		panic(fmt.Sprintf("sim: %v cannot receive a connection, only IN ports can", p))
	}
	p.conn = from
}

// PropagateFromConn copies the connected port's wave onto this port. It is
// a no-op on unconnected ports. Copying happens only here, never implicitly,
// so wave visibility advances exactly one propagation step at a time.
func (p *Port) PropagateFromConn() {
	if p.conn != nil {
		p.wave = p.conn.wave
	}
}
