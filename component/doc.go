// Package component defines the processing-unit contract for the runtime.
//
// A Component is a named unit with declared input and output ports and a
// single activation entry point. The scheduler invokes Activate with an
// ActivationContext giving read access to input ports and write access to
// output ports; the component never touches channels directly.
//
// Ports come in two flavors. The Port struct is the declarative descriptor
// (name, addressable, required) carried by a Definition. InputPort and
// OutputPort are the runtime endpoints that track attached channels: input
// ports drain buffered packets in FIFO order, output ports fan packets out
// to every attachment.
//
// The Registry maps component names to factory functions following the
// pattern func(rawConfig json.RawMessage, deps Dependencies) (Component,
// error). Factories parse their own configuration and do no I/O; all work
// happens inside activations.
package component
