package collector

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"syslogcollector/internal/network"
)

const (
	endpointScheme = "syslog://"
	wildcardHost   = "*"
)

var (
	ErrBadBindAddress = errors.New("bad bind address format")
	ErrBadPort        = errors.New("bad bind port")
)

// Parses an endpoint specification such as "syslog://*:6514" or "127.0.0.1:514@udp"
func ParseEndpoint(spec string) (endpoint Endpoint, err error) {
	address := strings.TrimPrefix(spec, endpointScheme)

	address, transport, hasTransport := strings.Cut(address, "@")
	if hasTransport && transport == network.UDP.String() {
		endpoint.Transport = network.UDP
	} else {
		endpoint.Transport = network.TCP
	}

	sep := strings.LastIndexByte(address, ':')
	if sep < 0 {
		err = fmt.Errorf("%w: %q has no port separator", ErrBadBindAddress, spec)
		return
	}
	host, rawPort := address[:sep], address[sep+1:]

	if rawPort == "" {
		err = fmt.Errorf("%w: %q has an empty port", ErrBadPort, spec)
		return
	}
	port, convErr := strconv.Atoi(rawPort)
	if convErr != nil || port < 1 || port > 65535 {
		err = fmt.Errorf("%w: %q is not in range 1-65535", ErrBadPort, rawPort)
		return
	}

	var addr netip.Addr
	switch host {
	case wildcardHost:
		endpoint.Wildcard = true
		addr = netip.IPv4Unspecified()
	case "":
		err = fmt.Errorf("%w: %q has an empty host", ErrBadBindAddress, spec)
		return
	default:
		addr, convErr = netip.ParseAddr(host)
		if convErr != nil || !addr.Is4() {
			err = fmt.Errorf("%w: host %q is not an IPv4 address", ErrBadBindAddress, host)
			return
		}
	}

	endpoint.Addr = netip.AddrPortFrom(addr, uint16(port))
	return
}

// Canonical specification form
func (endpoint Endpoint) String() (spec string) {
	host := endpoint.Addr.Addr().String()
	if endpoint.Wildcard {
		host = wildcardHost
	}
	spec = endpointScheme + host + ":" + strconv.Itoa(int(endpoint.Addr.Port()))
	if endpoint.Transport == network.UDP {
		spec += "@" + network.UDP.String()
	}
	return
}
