package collector

import (
	"iter"
	"net/netip"
)

// Creates a table with fixed capacity. closer releases the socket of a freed slot.
func NewConnTable(capacity int, closer func(fd int) (err error)) (table *ConnTable) {
	table = &ConnTable{
		slots:  make([]slot, capacity),
		byFD:   make(map[int]int, capacity),
		closer: closer,
	}
	return
}

// Stores peer in the first free slot. ok is false when the table is full.
func (table *ConnTable) AcceptInto(fd int, peer netip.AddrPort) (index int, ok bool) {
	for index = range table.slots {
		if table.slots[index].occupied {
			continue
		}
		table.slots[index] = slot{
			conn: Conn{
				FD:         fd,
				Peer:       peer,
				PeerString: peer.Addr().String(),
			},
			occupied: true,
		}
		table.byFD[fd] = index
		table.count++
		ok = true
		return
	}
	index = -1
	return
}

// Closes the slot socket and frees the slot. Freeing a free slot does nothing.
func (table *ConnTable) Close(index int) (err error) {
	if index < 0 || index >= len(table.slots) || !table.slots[index].occupied {
		return
	}
	fd := table.slots[index].conn.FD
	delete(table.byFD, fd)
	table.slots[index] = slot{}
	table.count--

	if table.closer != nil {
		err = table.closer(fd)
	}
	return
}

func (table *ConnTable) Get(index int) (conn Conn, ok bool) {
	if index < 0 || index >= len(table.slots) || !table.slots[index].occupied {
		return
	}
	conn = table.slots[index].conn
	ok = true
	return
}

// Slot index holding socket fd
func (table *ConnTable) Lookup(fd int) (index int, ok bool) {
	index, ok = table.byFD[fd]
	return
}

// Iterates occupied slots in index order. Slots may be closed during iteration.
func (table *ConnTable) Occupied() iter.Seq2[int, Conn] {
	return func(yield func(int, Conn) bool) {
		for index := range table.slots {
			if !table.slots[index].occupied {
				continue
			}
			if !yield(index, table.slots[index].conn) {
				return
			}
		}
	}
}

func (table *ConnTable) Len() (count int) {
	count = table.count
	return
}

func (table *ConnTable) Cap() (capacity int) {
	capacity = len(table.slots)
	return
}

// Closes every occupied slot
func (table *ConnTable) CloseAll() {
	for index := range table.Occupied() {
		table.Close(index)
	}
}
