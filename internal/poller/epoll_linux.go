package poller

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type epoller struct {
	epfd int
	raw  []unix.EpollEvent
}

// Creates an epoll backed poller
func New(sizeHint int) (poller Poller, err error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		err = fmt.Errorf("failed to create epoll instance: %w", err)
		return
	}
	if sizeHint < 1 {
		sizeHint = 1
	}
	poller = &epoller{
		epfd: epfd,
		raw:  make([]unix.EpollEvent, sizeHint),
	}
	return
}

func (ep *epoller) Add(fd int) (err error) {
	event := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLPRI | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	err = unix.EpollCtl(ep.epfd, unix.EPOLL_CTL_ADD, fd, &event)
	if err != nil {
		err = fmt.Errorf("failed to register fd %d: %w", fd, err)
	}
	return
}

func (ep *epoller) Remove(fd int) (err error) {
	// Non-nil event required by kernels before 2.6.9
	err = unix.EpollCtl(ep.epfd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
	if err != nil {
		err = fmt.Errorf("failed to unregister fd %d: %w", fd, err)
	}
	return
}

func (ep *epoller) Wait(timeout time.Duration, events []Event) (n int, err error) {
	if len(events) == 0 {
		return
	}
	if cap(ep.raw) < len(events) {
		ep.raw = make([]unix.EpollEvent, len(events))
	}
	raw := ep.raw[:len(events)]

	got, err := unix.EpollWait(ep.epfd, raw, int(timeout/time.Millisecond))
	if errors.Is(err, unix.EINTR) {
		err = nil
		return
	}
	if err != nil {
		err = fmt.Errorf("epoll wait failed: %w", err)
		return
	}

	for i := 0; i < got; i++ {
		flags := raw[i].Events
		events[n] = Event{
			FD:          int(raw[i].Fd),
			Readable:    flags&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Exceptional: flags&(unix.EPOLLPRI|unix.EPOLLERR) != 0,
		}
		n++
	}
	return
}

func (ep *epoller) Close() (err error) {
	err = unix.Close(ep.epfd)
	return
}
