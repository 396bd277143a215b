package peer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Concrete scenario 4 (spec §8): deliver a 3-fragment message out of
// order; assembly still equals the concatenation in frag_num order.
func TestInboundMessageState_ReorderedFragments(t *testing.T) {
	s := NewInboundMessageState(1, nil)
	require.NoError(t, s.AddFragment(2, true, []byte("ccc")))
	require.NoError(t, s.AddFragment(0, false, []byte("aaa")))
	require.NoError(t, s.AddFragment(1, false, []byte("bbb")))

	require.True(t, s.AllFragmentsReceived())
	out, err := s.Assemble()
	require.NoError(t, err)
	require.Equal(t, "aaabbbccc", string(out))
}

// Concrete scenario 5: duplicate fragment 0 is dropped silently; the
// first copy wins and byte_total counts each inserted fragment once.
func TestInboundMessageState_DuplicateFragmentFirstWins(t *testing.T) {
	s := NewInboundMessageState(2, nil)
	require.NoError(t, s.AddFragment(0, false, []byte("first")))
	require.NoError(t, s.AddFragment(0, false, []byte("second-should-be-ignored")))
	require.NoError(t, s.AddFragment(1, false, []byte("bb")))
	require.NoError(t, s.AddFragment(2, true, []byte("c")))

	out, err := s.Assemble()
	require.NoError(t, err)
	require.Equal(t, "firstbbc", string(out))
	require.Equal(t, len("first")+len("bb")+len("c"), s.ByteTotal())
}

// Invariant 1: re-inserting a frag_num never mutates the stored bytes.
func TestInboundMessageState_InsertTwiceKeepsFirst(t *testing.T) {
	s := NewInboundMessageState(3, nil)
	require.NoError(t, s.AddFragment(0, true, []byte("keep-me")))
	require.NoError(t, s.AddFragment(0, true, []byte("different-length-entirely")))

	out, err := s.Assemble()
	require.NoError(t, err)
	require.Equal(t, "keep-me", string(out))
}

func TestInboundMessageState_AssembleBeforeCompleteFails(t *testing.T) {
	s := NewInboundMessageState(4, nil)
	require.NoError(t, s.AddFragment(0, false, []byte("a")))
	_, err := s.Assemble()
	require.ErrorIs(t, err, ErrNotAssemblable)
}

func TestInboundMessageState_FragmentBeyondLastAfterGotLastDropped(t *testing.T) {
	s := NewInboundMessageState(5, nil)
	require.NoError(t, s.AddFragment(1, true, []byte("last")))
	err := s.AddFragment(2, false, []byte("too-late"))
	require.ErrorIs(t, err, ErrFragmentOutOfRange)
}

func TestInboundMessageState_AckBitmapGrowsMonotonically(t *testing.T) {
	s := NewInboundMessageState(6, nil)
	require.NoError(t, s.AddFragment(0, false, []byte("a")))
	b1 := s.AckBitmap()
	require.NoError(t, s.AddFragment(1, true, []byte("b")))
	b2 := s.AckBitmap()
	require.Equal(t, b1, b2&b1)
	require.Greater(t, b2, b1)
}
