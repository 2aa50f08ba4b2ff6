package ring

import (
	"testing"

	"pgregory.net/rapid"
)

// TestCRB_WraparoundProperty drives a random sequence of write/read
// operations (single-threaded, since the property under test is the cursor
// arithmetic rather than cross-core visibility) and checks that every chunk
// successfully read carries the sequence number that was written to it,
// exercising wraparound at every possible cursor position as required by
// Design Note 4 ("a property test covering wrap-around at every position in
// the cycle is mandatory").
func TestCRB_WraparoundProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numChunks := rapid.IntRange(1, 6).Draw(rt, "numChunks")
		c := newCRB(1, numChunks)

		var pending []int // seq numbers written but not yet read
		next := 0

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			doWrite := rapid.Bool().Draw(rt, "doWrite")
			if doWrite {
				ch, ok := c.AcquireWrite()
				if ok {
					ch.Meta.seq = next
					if !c.CommitWrite() {
						rt.Fatalf("commit failed after successful acquire")
					}
					pending = append(pending, next)
					next++
				}
			} else {
				rch, ok := c.AcquireRead()
				if ok {
					if len(pending) == 0 {
						rt.Fatalf("read succeeded with nothing pending")
					}
					want := pending[0]
					if rch.Meta.seq != want {
						rt.Fatalf("FIFO violated: want %d got %d", want, rch.Meta.seq)
					}
					pending = pending[1:]
					if !c.CommitRead() {
						rt.Fatalf("commit failed after successful acquire")
					}
				}
			}
		}
	})
}
