package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meta struct {
	seq int
}

func newCRB(chunkSize, numChunks int) *CRB[float32, meta] {
	return New[float32, meta](numChunks, func() []float32 {
		return make([]float32, chunkSize)
	})
}

// S4: CRB(chunk_size=512, num_chunks=3). Writer commits 3 chunks
// back-to-back; the 4th AcquireWrite fails while the buffer is full. Wrapping
// the writer to slot 0 needs read_ptr > 1, so it stays blocked after one
// read commit and succeeds after the second.
func TestCRB_S4_FullUntilRead(t *testing.T) {
	c := newCRB(512, 3)

	for i := 0; i < 3; i++ {
		ch, ok := c.AcquireWrite()
		require.True(t, ok, "chunk %d should acquire", i)
		ch.Meta.seq = i
		require.True(t, c.CommitWrite())
	}

	_, ok := c.AcquireWrite()
	assert.False(t, ok, "4th write should fail: buffer full")

	rch, ok := c.AcquireRead()
	require.True(t, ok)
	assert.Equal(t, 0, rch.Meta.seq)
	require.True(t, c.CommitRead())

	_, ok = c.AcquireWrite()
	assert.False(t, ok, "slot 0 stays blocked while read_ptr is 1")

	rch, ok = c.AcquireRead()
	require.True(t, ok)
	assert.Equal(t, 1, rch.Meta.seq)
	require.True(t, c.CommitRead())

	_, ok = c.AcquireWrite()
	assert.True(t, ok, "write should succeed after two read commits")
}

// Invariant 1: CRB FIFO — chunks observed in commit order.
func TestCRB_FIFOOrder(t *testing.T) {
	c := newCRB(4, 5)

	for round := 0; round < 50; round++ {
		ch, ok := c.AcquireWrite()
		require.True(t, ok)
		ch.Meta.seq = round
		require.True(t, c.CommitWrite())

		rch, ok := c.AcquireRead()
		require.True(t, ok)
		assert.Equal(t, round, rch.Meta.seq)
		require.True(t, c.CommitRead())
	}
}

// Invariant 3: no-overlap — a chunk pointer from AcquireWrite never equals
// one returned by AcquireRead until committed.
func TestCRB_NoOverlapWhileUncommitted(t *testing.T) {
	c := newCRB(4, 3)

	wch, ok := c.AcquireWrite()
	require.True(t, ok)
	require.True(t, c.CommitWrite())

	rch, ok := c.AcquireRead()
	require.True(t, ok)
	assert.Same(t, wch, rch)

	// Until CommitRead, a fresh AcquireWrite must not hand out the slot the
	// reader holds. With 3 chunks and write_ptr 1, it returns slot 1.
	wch2, ok := c.AcquireWrite()
	require.True(t, ok)
	assert.NotSame(t, rch, wch2)
}

func TestCRB_EmptyReadFails(t *testing.T) {
	c := newCRB(4, 2)
	_, ok := c.AcquireRead()
	assert.False(t, ok)
}

func TestCRB_StreamingFlag(t *testing.T) {
	c := newCRB(4, 2)
	assert.False(t, c.Streaming())
	c.SetStreaming(true)
	assert.True(t, c.Streaming())
}

func TestCRB_WrapAroundThenDrain(t *testing.T) {
	c := newCRB(2, 3)

	// Fill and drain repeatedly to exercise the state-1 -> state-2 -> state-1
	// cycle many times, covering wrap at every position.
	seq := 0
	for cycle := 0; cycle < 20; cycle++ {
		n := 0
		for {
			ch, ok := c.AcquireWrite()
			if !ok {
				break
			}
			ch.Meta.seq = seq
			seq++
			require.True(t, c.CommitWrite())
			n++
		}
		for i := 0; i < n; i++ {
			_, ok := c.AcquireRead()
			require.True(t, ok)
			require.True(t, c.CommitRead())
		}
	}
}
