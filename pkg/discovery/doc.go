// Package discovery implements mDNS/DNS-SD discovery of telemetry
// endpoints, following the OPC UA Part 12 multicast extension model.
//
// # Endpoint Discovery (_opcua-tcp._tcp)
//
// Servers announce one mDNS instance per endpoint. The instance name is
// the server name (a single DNS label, 63 bytes max). TXT records carry:
//
//	path  endpoint path, e.g. "/uamon" (defaults to "/")
//	caps  comma-separated capability tokens, e.g. "LDS,DA"
//
// Capability tokens identify what a server offers (DA for live data
// access, HD for history, LDS for a discovery server, and so on).
// Browsers aggregate answers from all interfaces into one
// ServerOnNetwork record per instance name, merging addresses on
// multi-homed hosts.
//
// # Roles
//
// Announcer registers and updates endpoint announcements; Browser
// discovers them and resolves a server by name. Both are backed by
// zeroconf and configurable per network interface.
package discovery
