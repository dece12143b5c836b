package discovery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DNS-SD identity constants.
const (
	// ServiceType is the DNS-SD service type for telemetry endpoints.
	ServiceType = "_opcua-tcp._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default endpoint port.
	DefaultPort = 4840
)

// TXT record key constants.
const (
	// TXTKeyPath carries the endpoint path, e.g. "/uamon".
	TXTKeyPath = "path"

	// TXTKeyCaps carries the comma-separated capability tokens.
	TXTKeyCaps = "caps"
)

// Well-known capability tokens. Any token matching the capability
// format is accepted; these are the ones browsers typically filter on.
const (
	// CapabilityLDS marks a local discovery server.
	CapabilityLDS = "LDS"

	// CapabilityDA marks live data access (value subscriptions).
	CapabilityDA = "DA"

	// CapabilityHD marks historical data access.
	CapabilityHD = "HD"

	// CapabilityME marks announcement via multicast extension.
	CapabilityME = "ME"
)

// Timing constants.
const (
	// BrowseTimeout bounds a browse that is never cancelled.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen mirrors the DNS label length limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize caps the combined encoded size of all TXT records.
	MaxTXTRecordSize = 400

	// MaxCapabilityLen bounds a single capability token.
	MaxCapabilityLen = 16
)

// Discovery errors.
var (
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrInvalidInstanceName = errors.New("invalid instance name")
	ErrInvalidCapability   = errors.New("invalid capability token")
	ErrInvalidPath         = errors.New("endpoint path must start with /")
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrTXTRecordTooLarge   = errors.New("TXT record exceeds size limit")
	ErrNotFound            = errors.New("service not found")
)

// AnnounceInfo contains the information for announcing an endpoint.
type AnnounceInfo struct {
	// Name is the mDNS instance name, a single DNS label.
	Name string

	// Host is the hostname browsers should resolve the instance to.
	// Informational; registration announces the local hostname.
	Host string

	// Port is the endpoint port. Zero means DefaultPort.
	Port uint16

	// Path is the endpoint path (TXT "path"). Empty means "/".
	Path string

	// Capabilities lists the capability tokens (TXT "caps").
	Capabilities []string
}

// Validate checks the announce information.
func (a *AnnounceInfo) Validate() error {
	if err := ValidateInstanceName(a.Name); err != nil {
		return err
	}
	if a.Path != "" && !strings.HasPrefix(a.Path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, a.Path)
	}
	for _, token := range a.Capabilities {
		if err := ValidateCapability(token); err != nil {
			return err
		}
	}
	if size := TXTSize(EncodeAnnounceTXT(a)); size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrTXTRecordTooLarge, size)
	}
	return nil
}

// ServerOnNetwork represents an endpoint found via mDNS. Records are
// aggregated per instance name across interfaces.
type ServerOnNetwork struct {
	// Name is the mDNS instance name.
	Name string

	// Host is the hostname (e.g. "field-unit-07.local.").
	Host string

	// Port is the endpoint port.
	Port uint16

	// Addresses contains resolved IP addresses from all interfaces.
	Addresses []string

	// Path is the endpoint path (from TXT "path").
	Path string

	// Capabilities contains the capability tokens (from TXT "caps").
	Capabilities []string
}

// Endpoint returns the endpoint URL, e.g. "opc.tcp://host:4840/uamon".
func (s *ServerOnNetwork) Endpoint() string {
	host := strings.TrimSuffix(s.Host, ".")
	path := s.Path
	if path == "/" {
		path = ""
	}
	return fmt.Sprintf("opc.tcp://%s:%d%s", host, s.Port, path)
}

// HasCapability reports whether the server advertises the given token.
func (s *ServerOnNetwork) HasCapability(token string) bool {
	for _, c := range s.Capabilities {
		if strings.EqualFold(c, token) {
			return true
		}
	}
	return false
}
