package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestAnnounceInfoValidate(t *testing.T) {
	tests := []struct {
		name    string
		info    AnnounceInfo
		wantErr error
	}{
		{
			name:    "ValidBasic",
			info:    AnnounceInfo{Name: "field-unit-07"},
			wantErr: nil,
		},
		{
			name: "ValidFull",
			info: AnnounceInfo{
				Name:         "plc-01",
				Host:         "plc-01.local",
				Port:         4841,
				Path:         "/uamon",
				Capabilities: []string{CapabilityDA, CapabilityHD},
			},
			wantErr: nil,
		},
		{
			name:    "ValidMaxNameLength",
			info:    AnnounceInfo{Name: strings.Repeat("a", MaxInstanceNameLen)},
			wantErr: nil,
		},
		{
			name:    "MissingName",
			info:    AnnounceInfo{},
			wantErr: ErrMissingRequired,
		},
		{
			name:    "NameTooLong",
			info:    AnnounceInfo{Name: strings.Repeat("a", MaxInstanceNameLen+1)},
			wantErr: ErrInstanceNameTooLong,
		},
		{
			name:    "NameWithDot",
			info:    AnnounceInfo{Name: "unit.07"},
			wantErr: ErrInvalidInstanceName,
		},
		{
			name:    "PathWithoutSlash",
			info:    AnnounceInfo{Name: "plc-01", Path: "uamon"},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "CapabilityWithSpace",
			info:    AnnounceInfo{Name: "plc-01", Capabilities: []string{"D A"}},
			wantErr: ErrInvalidCapability,
		},
		{
			name:    "CapabilityTooLong",
			info:    AnnounceInfo{Name: "plc-01", Capabilities: []string{strings.Repeat("x", MaxCapabilityLen+1)}},
			wantErr: ErrInvalidCapability,
		},
		{
			name:    "TXTTooLarge",
			info:    AnnounceInfo{Name: "plc-01", Path: "/" + strings.Repeat("a", MaxTXTRecordSize)},
			wantErr: ErrTXTRecordTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerOnNetworkEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		server ServerOnNetwork
		want   string
	}{
		{
			name:   "RootPath",
			server: ServerOnNetwork{Host: "field-unit-07.local.", Port: 4840, Path: "/"},
			want:   "opc.tcp://field-unit-07.local:4840",
		},
		{
			name:   "CustomPath",
			server: ServerOnNetwork{Host: "plc-01.local.", Port: 4841, Path: "/uamon"},
			want:   "opc.tcp://plc-01.local:4841/uamon",
		},
		{
			name:   "HostWithoutTrailingDot",
			server: ServerOnNetwork{Host: "bare-host", Port: 4840, Path: "/"},
			want:   "opc.tcp://bare-host:4840",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerOnNetworkHasCapability(t *testing.T) {
	server := ServerOnNetwork{
		Capabilities: []string{CapabilityDA, CapabilityHD},
	}

	if !server.HasCapability("DA") {
		t.Error("HasCapability(DA) = false, want true")
	}
	if !server.HasCapability("da") {
		t.Error("HasCapability(da) should match case-insensitively")
	}
	if server.HasCapability(CapabilityLDS) {
		t.Error("HasCapability(LDS) = true, want false")
	}

	empty := ServerOnNetwork{}
	if empty.HasCapability("DA") {
		t.Error("HasCapability on empty capabilities = true, want false")
	}
}

func TestDefaultConfigs(t *testing.T) {
	ac := DefaultAnnouncerConfig()
	if ac.TTL != DefaultTTL {
		t.Errorf("DefaultAnnouncerConfig().TTL = %v, want %v", ac.TTL, DefaultTTL)
	}
	if ac.Interface != "" {
		t.Errorf("DefaultAnnouncerConfig().Interface = %q, want empty", ac.Interface)
	}

	bc := DefaultBrowserConfig()
	if bc.BrowseTimeout != BrowseTimeout {
		t.Errorf("DefaultBrowserConfig().BrowseTimeout = %v, want %v", bc.BrowseTimeout, BrowseTimeout)
	}
}
