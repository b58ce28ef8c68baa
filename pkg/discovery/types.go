package discovery

import (
	"errors"
	"slices"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type for codec control endpoints.
	ServiceType = "_vcodec._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default control port.
	DefaultPort = 6980
)

// TXT record keys.
const (
	TXTKeyDeviceKey    = "key"
	TXTKeyName         = "name"
	TXTKeyModel        = "model"
	TXTKeyFirmware     = "fw"
	TXTKeyCapabilities = "caps"
)

// Timing constants.
const (
	// DefaultTTL is the DNS record TTL used when none is configured.
	DefaultTTL = 120 * time.Second

	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrTXTTooLarge         = errors.New("TXT records exceed 400 bytes")
	ErrNotAdvertising      = errors.New("not advertising")
)

// CodecInfo describes a codec to advertise.
type CodecInfo struct {
	// Key is the device key; it doubles as the instance name.
	Key string

	// Name is the display name.
	Name string

	// Model and Firmware are optional vendor details.
	Model    string
	Firmware string

	// Port is the control port. Zero means DefaultPort.
	Port uint16

	// Capabilities lists the capability names the codec implements.
	Capabilities []string
}

// CodecService is a codec found on the network.
type CodecService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	Key          string
	Name         string
	Model        string
	Firmware     string
	Capabilities []string
}

// HasCapability reports whether the service advertises capability name.
func (s *CodecService) HasCapability(name string) bool {
	return slices.Contains(s.Capabilities, name)
}

func (s *CodecService) clone() *CodecService {
	c := *s
	c.Addresses = slices.Clone(s.Addresses)
	c.Capabilities = slices.Clone(s.Capabilities)
	return &c
}
