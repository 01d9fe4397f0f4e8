package network

import "golang.org/x/sys/unix"

func acceptNonblock(listenFD int) (fd int, sa unix.Sockaddr, err error) {
	fd, sa, err = unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	return
}
