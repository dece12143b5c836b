package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAnnouncer implements the Announcer interface using zeroconf.
type MDNSAnnouncer struct {
	config AnnouncerConfig

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by instance name
}

// NewMDNSAnnouncer creates a new mDNS announcer.
func NewMDNSAnnouncer(config AnnouncerConfig) (*MDNSAnnouncer, error) {
	return &MDNSAnnouncer{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}, nil
}

// getInterfaces resolves the configured announce interface; nil means
// announce everywhere.
func (a *MDNSAnnouncer) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Announce starts announcing an endpoint. An existing announcement
// under the same instance name is replaced.
func (a *MDNSAnnouncer) Announce(info *AnnounceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if server, exists := a.servers[info.Name]; exists {
		server.Shutdown()
		delete(a.servers, info.Name)
	}

	txtStrings := TXTRecordsToStrings(EncodeAnnounceTXT(info))

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Name,
		ServiceType,
		Domain,
		port,
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register endpoint service: %w", err)
	}

	a.servers[info.Name] = server
	return nil
}

// Update replaces the TXT records of a running announcement.
func (a *MDNSAnnouncer) Update(info *AnnounceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[info.Name]
	if !exists {
		return ErrNotFound
	}

	server.SetText(TXTRecordsToStrings(EncodeAnnounceTXT(info)))
	return nil
}

// Stop withdraws the announcement with the given instance name.
func (a *MDNSAnnouncer) Stop(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[name]
	if !exists {
		return ErrNotFound
	}

	server.Shutdown()
	delete(a.servers, name)
	return nil
}

// StopAll withdraws every announcement.
func (a *MDNSAnnouncer) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, server := range a.servers {
		server.Shutdown()
		delete(a.servers, name)
	}
}

// MDNSBrowser discovers announced endpoints through zeroconf queries.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewMDNSBrowser returns a browser with the given configuration.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{
		config: config,
	}, nil
}

// Browse searches for endpoints. Answers from multiple interfaces are
// aggregated by instance name: addresses merge into a single entry, and
// a removal is reported only when the last address of an instance is
// gone.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *ServerOnNetwork, <-chan string, error) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	added := make(chan *ServerOnNetwork)
	removed := make(chan string)

	entries := make(chan *zeroconf.ServiceEntry)
	removedEntries := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	// Process entries with aggregation.
	go func() {
		defer close(added)
		defer close(removed)

		services := make(map[string]*ServerOnNetwork)
		rem := (<-chan *zeroconf.ServiceEntry)(removedEntries)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToServer(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.Name]
				if found {
					// Merge addresses into the existing entry.
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.Name] = svc
				select {
				case added <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-rem:
				if !ok {
					// Keep draining additions.
					rem = nil
					continue
				}
				existing, found := services[entry.Instance]
				if !found {
					continue
				}
				existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
				if len(existing.Addresses) > 0 {
					continue
				}
				delete(services, entry.Instance)
				select {
				case removed <- entry.Instance:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in the background.
	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removedEntries, opts...)
	}()

	return added, removed, nil
}

// FindByName browses until a server with the given instance name
// appears. Without a context deadline the configured browse timeout
// applies.
func (b *MDNSBrowser) FindByName(ctx context.Context, name string) (*ServerOnNetwork, error) {
	if _, ok := ctx.Deadline(); !ok && b.config.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	added, _, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-added:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.Name == name {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop cancels every browse this browser started.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions translates the config into zeroconf client options.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToServer converts a zeroconf entry, dropping malformed TXT.
func entryToServer(entry *zeroconf.ServiceEntry) *ServerOnNetwork {
	path, caps, err := DecodeAnnounceTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &ServerOnNetwork{
		Name:         entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    entryAddresses(entry),
		Path:         path,
		Capabilities: caps,
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds addresses to the existing list, skipping duplicates.
func mergeAddresses(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range extra {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters the gone addresses out of the list.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Compile-time interface satisfaction checks.
var (
	_ Announcer = (*MDNSAnnouncer)(nil)
	_ Browser   = (*MDNSBrowser)(nil)
)
