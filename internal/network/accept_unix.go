//go:build unix && !linux

package network

import "golang.org/x/sys/unix"

// No accept4 everywhere, flags are applied after the fact
func acceptNonblock(listenFD int) (fd int, sa unix.Sockaddr, err error) {
	fd, sa, err = unix.Accept(listenFD)
	if err != nil {
		return
	}
	unix.CloseOnExec(fd)
	err = unix.SetNonblock(fd, true)
	if err != nil {
		unix.Close(fd)
		fd = -1
	}
	return
}
