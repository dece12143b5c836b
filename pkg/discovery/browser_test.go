package discovery

import (
	"errors"
	"reflect"
	"testing"
)

func TestServiceEntryToServerOnNetwork(t *testing.T) {
	entry := &ServiceEntry{
		Instance: "field-unit-07",
		Service:  ServiceType,
		Domain:   Domain,
		Host:     "field-unit-07.local.",
		Port:     4841,
		Text:     []string{"path=/uamon", "caps=DA,HD"},
		Addrs:    []string{"192.168.1.40", "fe80::1"},
	}

	svc, err := entry.ToServerOnNetwork()
	if err != nil {
		t.Fatalf("ToServerOnNetwork() error = %v", err)
	}

	if svc.Name != "field-unit-07" {
		t.Errorf("Name = %q, want %q", svc.Name, "field-unit-07")
	}
	if svc.Host != "field-unit-07.local." {
		t.Errorf("Host = %q, want %q", svc.Host, "field-unit-07.local.")
	}
	if svc.Port != 4841 {
		t.Errorf("Port = %d, want 4841", svc.Port)
	}
	if svc.Path != "/uamon" {
		t.Errorf("Path = %q, want %q", svc.Path, "/uamon")
	}
	if !reflect.DeepEqual(svc.Capabilities, []string{"DA", "HD"}) {
		t.Errorf("Capabilities = %v, want [DA HD]", svc.Capabilities)
	}
	if !reflect.DeepEqual(svc.Addresses, []string{"192.168.1.40", "fe80::1"}) {
		t.Errorf("Addresses = %v", svc.Addresses)
	}

	if got := svc.Endpoint(); got != "opc.tcp://field-unit-07.local:4841/uamon" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestServiceEntryToServerOnNetworkBadTXT(t *testing.T) {
	entry := &ServiceEntry{
		Instance: "broken",
		Text:     []string{"path=no-slash"},
	}

	if _, err := entry.ToServerOnNetwork(); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("ToServerOnNetwork() error = %v, want %v", err, ErrInvalidPath)
	}
}

func TestFilterByCapability(t *testing.T) {
	svc := &ServerOnNetwork{Capabilities: []string{"DA"}}

	if !FilterByCapability("HD", "DA")(svc) {
		t.Error("filter should match any listed token")
	}
	if FilterByCapability("LDS")(svc) {
		t.Error("filter matched a token the server does not advertise")
	}
}

func TestFilterServers(t *testing.T) {
	in := make(chan *ServerOnNetwork, 3)
	in <- &ServerOnNetwork{Name: "a", Capabilities: []string{"DA"}}
	in <- &ServerOnNetwork{Name: "b", Capabilities: []string{"LDS"}}
	in <- &ServerOnNetwork{Name: "c", Capabilities: []string{"DA", "HD"}}
	close(in)

	var got []string
	for svc := range FilterServers(in, FilterByCapability("DA")) {
		got = append(got, svc.Name)
	}

	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("filtered names = %v, want [a c]", got)
	}
}
