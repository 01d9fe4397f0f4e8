package network

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

type Transport int

const (
	TCP Transport = iota
	UDP
)

func (transport Transport) String() (name string) {
	switch transport {
	case UDP:
		name = "udp"
	default:
		name = "tcp"
	}
	return
}

// Opens a non-blocking IPv4 socket bound to addr with address reuse enabled.
// Stream sockets are put into listening state with the given backlog.
func Listen(transport Transport, addr netip.AddrPort, backlog int) (fd int, err error) {
	if !addr.Addr().Is4() {
		err = fmt.Errorf("bind address %s is not IPv4", addr.Addr())
		return
	}

	sockType := unix.SOCK_STREAM
	if transport == UDP {
		sockType = unix.SOCK_DGRAM
	}

	fd, err = unix.Socket(unix.AF_INET, sockType, 0)
	if err != nil {
		err = fmt.Errorf("failed to create %s socket: %w", transport, err)
		fd = -1
		return
	}
	defer func() {
		if err != nil {
			unix.Close(fd)
			fd = -1
		}
	}()

	unix.CloseOnExec(fd)
	err = unix.SetNonblock(fd, true)
	if err != nil {
		err = fmt.Errorf("failed to set non-blocking mode: %w", err)
		return
	}

	// Allow immediate rebind after restart
	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err != nil {
		err = fmt.Errorf("failed to set address reuse option: %w", err)
		return
	}

	sockAddr := &unix.SockaddrInet4{Port: int(addr.Port()), Addr: addr.Addr().As4()}
	err = unix.Bind(fd, sockAddr)
	if err != nil {
		err = fmt.Errorf("failed to bind %s socket to %s: %w", transport, addr, err)
		return
	}

	if transport == UDP {
		return
	}

	err = unix.Listen(fd, backlog)
	if err != nil {
		err = fmt.Errorf("failed to listen on %s: %w", addr, err)
		return
	}
	return
}

// Accepts one pending stream connection as a non-blocking socket
func Accept(listenFD int) (fd int, peer netip.AddrPort, err error) {
	var sa unix.Sockaddr
	for {
		fd, sa, err = acceptNonblock(listenFD)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		err = fmt.Errorf("accept failed: %w", err)
		fd = -1
		return
	}

	peer = SockaddrToAddrPort(sa)
	return
}

// Reads once from socket without blocking. Zero bytes with nil error means orderly peer shutdown.
func Recv(fd int, buf []byte) (n int, err error) {
	for {
		n, _, err = unix.Recvfrom(fd, buf, unix.MSG_DONTWAIT)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		n = 0
	}
	return
}

// Reports whether a read error only means no data is available right now
func IsWouldBlock(err error) (wouldBlock bool) {
	wouldBlock = errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
	return
}

// Address the socket is bound to
func LocalAddr(fd int) (addr netip.AddrPort, err error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		err = fmt.Errorf("failed to retrieve socket name: %w", err)
		return
	}
	addr = SockaddrToAddrPort(sa)
	return
}

func Close(fd int) (err error) {
	err = unix.Close(fd)
	return
}

// Converts raw socket address into address/port pair (zero value for non-inet families)
func SockaddrToAddrPort(sa unix.Sockaddr) (addr netip.AddrPort) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		addr = netip.AddrPortFrom(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		addr = netip.AddrPortFrom(netip.AddrFrom16(v.Addr).Unmap(), uint16(v.Port))
	}
	return
}
