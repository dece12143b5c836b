package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS endpoint browsing capabilities.
type Browser interface {
	// Browse searches for endpoints. It returns two channels: added
	// (newly discovered servers) and removed (instance names whose last
	// address disappeared). Both are closed when the context ends.
	Browse(ctx context.Context) (added <-chan *ServerOnNetwork, removed <-chan string, err error)

	// FindByName browses until a server with the given instance name
	// appears. Returns ErrNotFound when browsing ends without a match
	// and ctx.Err() when the context expires first.
	FindByName(ctx context.Context, name string) (*ServerOnNetwork, error)

	// Stop cancels every browse this browser started.
	Stop()
}

// BrowserConfig tunes browsing.
type BrowserConfig struct {
	// BrowseTimeout bounds lookups that would otherwise wait forever.
	BrowseTimeout time.Duration

	// Interface restricts browsing to one network interface; empty
	// browses on all of them.
	Interface string
}

// DefaultBrowserConfig returns the stock browsing configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc decides whether a discovered server is kept.
type FilterFunc func(*ServerOnNetwork) bool

// FilterByCapability returns a filter matching servers that advertise
// any of the given capability tokens.
func FilterByCapability(tokens ...string) FilterFunc {
	return func(svc *ServerOnNetwork) bool {
		for _, t := range tokens {
			if svc.HasCapability(t) {
				return true
			}
		}
		return false
	}
}

// FilterServers filters a channel of browse results.
func FilterServers(in <-chan *ServerOnNetwork, filter FilterFunc) <-chan *ServerOnNetwork {
	out := make(chan *ServerOnNetwork)
	go func() {
		defer close(out)
		for svc := range in {
			if filter(svc) {
				out <- svc
			}
		}
	}()
	return out
}

// ServiceEntry holds raw mDNS service entry data. It is a helper for
// Browser implementations and tests.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToServerOnNetwork converts a ServiceEntry to a ServerOnNetwork.
func (e *ServiceEntry) ToServerOnNetwork() (*ServerOnNetwork, error) {
	path, caps, err := DecodeAnnounceTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}

	return &ServerOnNetwork{
		Name:         e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		Path:         path,
		Capabilities: caps,
	}, nil
}
