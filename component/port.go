package component

// Direction for packet flow through a port
type Direction string

// Direction constants for port packet flow
const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port describes a declared attachment point on a component. It is pure
// metadata; the runtime endpoints are InputPort and OutputPort.
type Port struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Addressable bool      `json:"addressable,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Definition declares a component's external surface: its ports and,
// optionally, the name of an output port that receives activation
// failures as data packets instead of escalating them.
type Definition struct {
	Description string `json:"description,omitempty"`
	InPorts     []Port `json:"inPorts,omitempty"`
	OutPorts    []Port `json:"outPorts,omitempty"`
	ErrorPort   string `json:"errorPort,omitempty"`
}

// InPort looks up a declared input port by name.
func (d Definition) InPort(name string) (Port, bool) {
	for _, p := range d.InPorts {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// OutPort looks up a declared output port by name.
func (d Definition) OutPort(name string) (Port, bool) {
	for _, p := range d.OutPorts {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// HasErrorPort reports whether the definition designates an error output
// and that port is actually declared.
func (d Definition) HasErrorPort() bool {
	if d.ErrorPort == "" {
		return false
	}
	_, ok := d.OutPort(d.ErrorPort)
	return ok
}
