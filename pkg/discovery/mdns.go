package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration

	// Logger receives advertisement lifecycle messages.
	Logger *slog.Logger
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		TTL: DefaultTTL,
	}
}

// Server is a registered mDNS service.
type Server interface {
	SetText(txt []string)
	Shutdown()
}

// RegisterFunc registers an mDNS service. zeroconf.Register is the
// production implementation.
type RegisterFunc func(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (Server, error)

func zeroconfRegister(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (Server, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces, opts...)
}

// MDNSAdvertiser publishes a single codec on the network.
type MDNSAdvertiser struct {
	config   AdvertiserConfig
	register RegisterFunc
	logger   *slog.Logger

	mu     sync.Mutex
	server Server
	info   CodecInfo
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return NewMDNSAdvertiserWithRegister(config, zeroconfRegister)
}

// NewMDNSAdvertiserWithRegister creates an advertiser with a custom
// registration function.
func NewMDNSAdvertiserWithRegister(config AdvertiserConfig, register RegisterFunc) *MDNSAdvertiser {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MDNSAdvertiser{
		config:   config,
		register: register,
		logger:   logger,
	}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		a.logger.Warn("mdns interface not found, using all", "interface", a.config.Interface, "error", err)
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising info, replacing any previous advertisement.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *CodecInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateInstanceName(info.Key); err != nil {
		return err
	}

	txt := TXTRecordsToStrings(EncodeCodecTXT(info))
	if err := ValidateTXTSize(txt); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing if any
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := a.register(info.Key, ServiceType, Domain, port, txt, a.getInterfaces(), opts...)
	if err != nil {
		return fmt.Errorf("failed to register codec service: %w", err)
	}

	a.server = server
	a.info = *info
	a.logger.Info("advertising codec", "device", info.Key, "service", ServiceType, "port", port)
	return nil
}

// Update replaces the TXT records of the running advertisement.
func (a *MDNSAdvertiser) Update(info *CodecInfo) error {
	txt := TXTRecordsToStrings(EncodeCodecTXT(info))
	if err := ValidateTXTSize(txt); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(txt)
	a.info = *info
	return nil
}

// Stop withdraws the advertisement. Stopping when idle is a no-op.
func (a *MDNSAdvertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.logger.Info("stopped advertising codec", "device", a.info.Key)
	}
}

// Advertising reports whether an advertisement is active and, if so,
// what it publishes.
func (a *MDNSAdvertiser) Advertising() (CodecInfo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, a.server != nil
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	Interface string

	// Logger receives browse failures.
	Logger *slog.Logger
}

// BrowseFunc browses for an mDNS service type until ctx is done.
// zeroconf.Browse is the production implementation.
type BrowseFunc func(ctx context.Context, service, domain string, entries, removed chan<- *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

// MDNSBrowser finds codecs on the network using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	browse BrowseFunc
	logger *slog.Logger
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return NewMDNSBrowserWithBrowse(config, zeroconf.Browse)
}

// NewMDNSBrowserWithBrowse creates a browser with a custom browse function.
func NewMDNSBrowserWithBrowse(config BrowserConfig, browse BrowseFunc) *MDNSBrowser {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MDNSBrowser{
		config: config,
		browse: browse,
		logger: logger,
	}
}

// Browse searches for codecs until ctx is done or browsing fails, then
// closes the returned channel. Services are aggregated by instance name:
// an instance is emitted when first seen and again, as a new value with
// the combined address list, whenever another interface reports a new
// address. Emitted values are never modified afterwards.
func (b *MDNSBrowser) Browse(ctx context.Context) <-chan *CodecService {
	out := make(chan *CodecService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	browseDone := make(chan struct{})

	go func() {
		defer close(browseDone)
		err := b.browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
		if err != nil && ctx.Err() == nil {
			b.logger.Warn("mdns browse failed", "service", ServiceType, "error", err)
		}
	}()

	go func() {
		defer close(out)

		services := make(map[string]*CodecService)
		for {
			select {
			case entry := <-entries:
				svc := entryToService(entry)
				if svc == nil {
					continue
				}
				if existing, found := services[svc.InstanceName]; found {
					merged := mergeAddresses(existing.Addresses, svc.Addresses)
					if len(merged) == len(existing.Addresses) {
						continue
					}
					svc.Addresses = merged
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc.clone():
				case <-ctx.Done():
					return
				}

			case entry := <-removed:
				if entry != nil {
					delete(services, entry.Instance)
				}

			case <-browseDone:
				return

			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Discover browses until ctx is done and returns the services found,
// one per instance, in discovery order.
func (b *MDNSBrowser) Discover(ctx context.Context) []CodecService {
	var (
		order []string
		found = make(map[string]CodecService)
	)
	for svc := range b.Browse(ctx) {
		if _, seen := found[svc.InstanceName]; !seen {
			order = append(order, svc.InstanceName)
		}
		found[svc.InstanceName] = *svc
	}

	services := make([]CodecService, 0, len(order))
	for _, name := range order {
		services = append(services, found[name])
	}
	return services
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err != nil {
			b.logger.Warn("mdns interface not found, using all", "interface", b.config.Interface, "error", err)
			return nil
		}
		opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
	}
	return opts
}

// entryToService converts a zeroconf entry. Entries with unusable TXT
// records return nil.
func entryToService(entry *zeroconf.ServiceEntry) *CodecService {
	if entry == nil {
		return nil
	}
	info, err := DecodeCodecTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &CodecService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		Key:          info.Key,
		Name:         info.Name,
		Model:        info.Model,
		Firmware:     info.Firmware,
		Capabilities: info.Capabilities,
	}
}

// mergeAddresses returns a new slice holding existing followed by the
// addresses of more not already present.
func mergeAddresses(existing, more []string) []string {
	merged := make([]string, len(existing), len(existing)+len(more))
	copy(merged, existing)
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range more {
		if !seen[a] {
			merged = append(merged, a)
			seen[a] = true
		}
	}
	return merged
}
