package ztrace

import "net"

// Endpoint names a network peer: a host (IPv4 and/or IPv6), an optional
// port, and a service name. Fields with no value are omitted on the wire,
// never emitted as null (spec.md §4.4).
type Endpoint struct {
	IPv4        net.IP
	IPv6        net.IP
	Port        uint16
	ServiceName string
}

// hasIPv4 reports whether e carries a 4-byte address.
func (e *Endpoint) hasIPv4() bool {
	return e != nil && e.IPv4 != nil && e.IPv4.To4() != nil
}

// hasIPv6 reports whether e carries a non-v4 address.
func (e *Endpoint) hasIPv6() bool {
	return e != nil && e.IPv6 != nil && e.IPv6.To16() != nil && e.IPv6.To4() == nil
}

// localEndpoint resolves the process-wide default endpoint: the configured
// or auto-discovered IPv4 address and the configured system_id as service
// name. Start always records it as the local endpoint; Join does unless
// opts.Endpoint overrides it.
func localEndpoint(cfg *ProcessConfig) Endpoint {
	return Endpoint{
		IPv4:        cfg.IPv4,
		ServiceName: cfg.SystemID,
	}
}
