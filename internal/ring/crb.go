// Package ring implements the lock-free, single-producer/single-consumer
// chunked ring buffer (CRB) that carries channelized IQ blocks plus per-chunk
// metadata from the device-manager goroutine to the audio-period goroutine.
//
// The algorithm is ported method-for-method from the C++ CRB in the original
// sdrx source: two atomic cursors (write_ptr, read_ptr) and one plain end
// cursor whose visibility is piggy-backed on the release store to write_ptr.
// Only the writer ever moves the buffer from state 1 (write leads read) to
// state 2 (read leads write); only the reader ever moves it back.
package ring

import "sync/atomic"

const cacheLinePad = 64

// pad separates hot fields so the producer and consumer cursors never share
// a cache line, mirroring the ALING_LEN spacer members in the original CRB.
type pad [cacheLinePad]byte

// Chunk holds one preallocated payload slice and its metadata record.
type Chunk[T any, M any] struct {
	Buf  []T
	Meta M
}

// CRB is the chunked ring buffer. T is the per-element payload type (e.g. a
// channel-strided IQ sample); M is the metadata type committed alongside
// each chunk.
type CRB[T any, M any] struct {
	chunks []Chunk[T, M]

	_        pad
	writePtr atomic.Uint64
	_        pad
	readPtr  atomic.Uint64
	_        pad
	endPtr   uint64 // non-atomic: synchronized by the release store on writePtr
	_        pad

	capacity uint64

	// writer-only scratch
	acquiredWritePtr uint64
	acquiredWriteLen uint64
	acquiredEndPtr   uint64

	// reader-only scratch
	acquiredReadPtr uint64
	acquiredReadLen uint64

	// streaming flag: lets the consumer distinguish "producer silent but
	// alive" from "producer starved/stopped".
	streaming atomic.Bool
}

// New constructs a CRB with numChunks usable slots (capacity is numChunks+1,
// the extra slot is the sentinel that makes the empty/full states
// distinguishable). newElem allocates one chunk's backing buffer.
func New[T any, M any](numChunks int, newElem func() []T) *CRB[T, M] {
	if numChunks < 1 {
		panic("ring: numChunks must be >= 1")
	}
	c := &CRB[T, M]{
		chunks:   make([]Chunk[T, M], numChunks+1),
		capacity: uint64(numChunks + 1),
		endPtr:   uint64(numChunks),
	}
	for i := range c.chunks {
		c.chunks[i].Buf = newElem()
	}
	return c
}

// SetStreaming updates the producer-alive flag. The producer calls this once
// it starts/stops delivering blocks.
func (c *CRB[T, M]) SetStreaming(v bool) { c.streaming.Store(v) }

// Streaming reports whether the producer currently claims to be delivering
// samples.
func (c *CRB[T, M]) Streaming() bool { return c.streaming.Load() }

// AcquireWrite reserves the next chunk slot for the producer. It returns the
// chunk and true if space was available, or false if the buffer is full.
func (c *CRB[T, M]) AcquireWrite() (*Chunk[T, M], bool) {
	rd := c.readPtr.Load() // acquire
	wr := c.writePtr.Load()

	c.acquiredWriteLen = 0

	if wr >= rd {
		// State 1: write leads read.
		if wr+1 < c.capacity {
			c.acquiredWritePtr = wr
			c.acquiredWriteLen = 1
			c.acquiredEndPtr = c.capacity - 1
		} else if 1 < rd {
			// Wrap around to the start of the buffer.
			c.acquiredWritePtr = 0
			c.acquiredWriteLen = 1
			c.acquiredEndPtr = wr
		}
	} else {
		// State 2: read leads write. end_ptr is untouched in this branch.
		if wr+1 < rd {
			c.acquiredWritePtr = wr
			c.acquiredWriteLen = 1
		}
	}

	if c.acquiredWriteLen == 0 {
		return nil, false
	}

	return &c.chunks[c.acquiredWritePtr], true
}

// CommitWrite publishes the chunk most recently returned by AcquireWrite.
// Returns false if there was no outstanding acquired write.
func (c *CRB[T, M]) CommitWrite() bool {
	if c.acquiredWriteLen == 0 {
		return false
	}

	// This plain store is made visible by the release store below.
	c.endPtr = c.acquiredEndPtr
	c.acquiredWriteLen = 0
	c.writePtr.Store(c.acquiredWritePtr + 1) // release
	return true
}

// AcquireRead reserves the next chunk for the consumer. Returns the chunk
// and true if data was available, or false if the buffer is empty.
func (c *CRB[T, M]) AcquireRead() (*Chunk[T, M], bool) {
	wr := c.writePtr.Load() // acquire
	rd := c.readPtr.Load()

	if wr >= rd {
		// State 1: read up to, but not including, wr.
		c.acquiredReadPtr = rd
		c.acquiredReadLen = wr - rd
	} else {
		// State 2: read up to end_ptr, then wrap.
		if rd < c.endPtr {
			c.acquiredReadPtr = rd
			c.acquiredReadLen = c.endPtr - rd
		} else {
			c.acquiredReadPtr = 0
			c.acquiredReadLen = wr
		}
	}

	if c.acquiredReadLen == 0 {
		return nil, false
	}

	return &c.chunks[c.acquiredReadPtr], true
}

// CommitRead releases the chunk most recently returned by AcquireRead.
// Returns false if there was no outstanding acquired read.
func (c *CRB[T, M]) CommitRead() bool {
	if c.acquiredReadLen == 0 {
		return false
	}

	c.acquiredReadLen = 0
	c.readPtr.Store(c.acquiredReadPtr + 1) // release
	return true
}
