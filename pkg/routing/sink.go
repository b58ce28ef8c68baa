package routing

import "reflect"

// Inputs is implemented by devices with routable inputs.
type Inputs interface {
	// InputPorts returns the device's input ports.
	InputPorts() *PortCollection
}

// Sink is a device the routing engine can switch.
type Sink interface {
	Inputs

	// Key returns the device key.
	Key() string

	// ExecuteSwitch selects the input identified by selector.
	// The selector type is defined by the device driver.
	ExecuteSwitch(selector any) error
}

// SwitchTo looks up the input port by key and passes its selector to
// the sink. It is the call a routing engine makes once a path is chosen.
func SwitchTo(sink Sink, portKey string) error {
	port, err := sink.InputPorts().Get(portKey)
	if err != nil {
		return err
	}
	return sink.ExecuteSwitch(port.Selector)
}

// SelectorEqual reports whether two selectors are equal. Selectors of
// uncomparable types (slices, maps, structs holding them) are compared
// deeply instead of panicking; values of different types never match.
func SelectorEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
