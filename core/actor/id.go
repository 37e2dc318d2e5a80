package actor

import (
	"strconv"
	"sync/atomic"
)

// ID identifies one started actor instance. IDs are allocated from a
// process-wide counter and never reused.
type ID uint64

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }
