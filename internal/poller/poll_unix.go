//go:build unix && !linux

package poller

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// poll(2) fallback for platforms without epoll
type pollPoller struct {
	fds   []unix.PollFd
	index map[int]int // fd -> position in fds
}

func New(sizeHint int) (poller Poller, err error) {
	poller = &pollPoller{
		fds:   make([]unix.PollFd, 0, sizeHint),
		index: make(map[int]int, sizeHint),
	}
	return
}

func (pp *pollPoller) Add(fd int) (err error) {
	if _, exists := pp.index[fd]; exists {
		err = fmt.Errorf("failed to register fd %d: %w", fd, unix.EEXIST)
		return
	}
	pp.index[fd] = len(pp.fds)
	pp.fds = append(pp.fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN | unix.POLLPRI})
	return
}

func (pp *pollPoller) Remove(fd int) (err error) {
	pos, exists := pp.index[fd]
	if !exists {
		err = fmt.Errorf("failed to unregister fd %d: %w", fd, unix.ENOENT)
		return
	}
	last := len(pp.fds) - 1
	if pos != last {
		pp.fds[pos] = pp.fds[last]
		pp.index[int(pp.fds[pos].Fd)] = pos
	}
	pp.fds = pp.fds[:last]
	delete(pp.index, fd)
	return
}

func (pp *pollPoller) Wait(timeout time.Duration, events []Event) (n int, err error) {
	if len(events) == 0 {
		return
	}
	for i := range pp.fds {
		pp.fds[i].Revents = 0
	}

	_, err = unix.Poll(pp.fds, int(timeout/time.Millisecond))
	if errors.Is(err, unix.EINTR) {
		err = nil
		return
	}
	if err != nil {
		err = fmt.Errorf("poll failed: %w", err)
		return
	}

	for _, pfd := range pp.fds {
		if n == len(events) {
			break // remaining descriptors stay ready for next wait
		}
		if pfd.Revents == 0 {
			continue
		}
		events[n] = Event{
			FD:          int(pfd.Fd),
			Readable:    pfd.Revents&(unix.POLLIN|unix.POLLHUP) != 0,
			Exceptional: pfd.Revents&(unix.POLLPRI|unix.POLLERR|unix.POLLNVAL) != 0,
		}
		n++
	}
	return
}

func (pp *pollPoller) Close() (err error) {
	pp.fds = nil
	pp.index = nil
	return
}
