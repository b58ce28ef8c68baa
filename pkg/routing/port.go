// Package routing defines the signal ports a routing engine switches between.
//
// A device exposes an ordered PortCollection of input ports. The routing
// engine picks a port and passes its Selector to the device's
// ExecuteSwitch; what the selector means is up to the device driver.
package routing

import (
	"errors"
	"strings"
	"sync"
)

// Routing errors.
var (
	ErrPortNotFound  = errors.New("port not found")
	ErrDuplicatePort = errors.New("duplicate port key")
	ErrEmptyPortKey  = errors.New("port key is empty")
)

// SignalType is a bitmask of the signals a port carries.
type SignalType uint8

const (
	SignalAudio SignalType = 1 << iota
	SignalVideo
	SignalUSB

	SignalAudioVideo = SignalAudio | SignalVideo
)

// Has reports whether all bits of other are set.
func (s SignalType) Has(other SignalType) bool {
	return other != 0 && s&other == other
}

// String returns the signal names joined by "+".
func (s SignalType) String() string {
	var parts []string
	if s&SignalAudio != 0 {
		parts = append(parts, "audio")
	}
	if s&SignalVideo != 0 {
		parts = append(parts, "video")
	}
	if s&SignalUSB != 0 {
		parts = append(parts, "usb")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ConnectionType is the physical or logical connector of a port.
type ConnectionType uint8

const (
	ConnectionUnknown ConnectionType = iota
	ConnectionHDMI
	ConnectionDVI
	ConnectionVGA
	ConnectionSDI
	ConnectionComposite
	ConnectionLineAudio
	ConnectionDigitalAudio
	ConnectionStreaming
	ConnectionBackplane
)

// String returns the connection type name.
func (c ConnectionType) String() string {
	names := []string{
		"unknown", "hdmi", "dvi", "vga", "sdi", "composite",
		"lineAudio", "digitalAudio", "streaming", "backplane",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// ParseConnectionType returns the connection type for a name as printed
// by String. Unknown names map to ConnectionUnknown.
func ParseConnectionType(name string) ConnectionType {
	for c := ConnectionHDMI; c <= ConnectionBackplane; c++ {
		if strings.EqualFold(c.String(), name) {
			return c
		}
	}
	return ConnectionUnknown
}

// InputPort is a routable input on a device.
type InputPort struct {
	// Key identifies the port within its device.
	Key string

	// Signal is the set of signals the port carries.
	Signal SignalType

	// Connection is the connector type.
	Connection ConnectionType

	// Selector is passed to the owning device's ExecuteSwitch.
	Selector any

	// ParentKey is the key of the owning device.
	ParentKey string

	// Internal marks ports with no external connector (e.g. a
	// built-in camera).
	Internal bool
}

// PortCollection is an ordered, key-indexed set of input ports.
// It is safe for concurrent use.
type PortCollection struct {
	mu    sync.RWMutex
	ports []*InputPort
}

// NewPortCollection creates an empty collection.
func NewPortCollection() *PortCollection {
	return &PortCollection{}
}

// Add appends a port. Keys must be non-empty and unique.
func (c *PortCollection) Add(port *InputPort) error {
	if port.Key == "" {
		return ErrEmptyPortKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.ports {
		if p.Key == port.Key {
			return ErrDuplicatePort
		}
	}
	c.ports = append(c.ports, port)
	return nil
}

// Get returns the port with the given key.
func (c *PortCollection) Get(key string) (*InputPort, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.ports {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, ErrPortNotFound
}

// Remove deletes the port with the given key.
func (c *PortCollection) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.ports {
		if p.Key == key {
			c.ports = append(c.ports[:i], c.ports[i+1:]...)
			return nil
		}
	}
	return ErrPortNotFound
}

// Ports returns the ports in insertion order.
func (c *PortCollection) Ports() []*InputPort {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*InputPort, len(c.ports))
	copy(result, c.ports)
	return result
}

// Len returns the number of ports.
func (c *PortCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ports)
}

// WithSignal returns the ports carrying all bits of signal, in order.
func (c *PortCollection) WithSignal(signal SignalType) []*InputPort {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*InputPort
	for _, p := range c.ports {
		if p.Signal.Has(signal) {
			result = append(result, p)
		}
	}
	return result
}
