package discovery

import "time"

// Announcer provides mDNS endpoint announcement capabilities.
type Announcer interface {
	// Announce starts announcing an endpoint. Announcing a name that is
	// already registered replaces the previous announcement.
	Announce(info *AnnounceInfo) error

	// Update replaces the TXT records of a running announcement.
	Update(info *AnnounceInfo) error

	// Stop withdraws the announcement with the given instance name.
	Stop(name string) error

	// StopAll withdraws every announcement.
	StopAll()
}

// AnnouncerConfig configures announcer behavior.
type AnnouncerConfig struct {
	// Interface restricts announcements to one network interface;
	// leave it empty to announce on all of them.
	Interface string

	// TTL is the DNS record TTL. Default: DefaultTTL.
	TTL time.Duration
}

// DefaultAnnouncerConfig returns the default announcer configuration.
func DefaultAnnouncerConfig() AnnouncerConfig {
	return AnnouncerConfig{
		Interface: "",
		TTL:       DefaultTTL,
	}
}
