package ssu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataFrame_RoundTrip(t *testing.T) {
	acks := []Ack{{MsgID: 7, Bitmap: 0b101}}
	frags := []Fragment{
		{MsgID: 42, FragNum: 0, IsLast: false, Payload: []byte("abc")},
		{MsgID: 42, FragNum: 1, IsLast: true, Payload: []byte("de")},
	}
	raw := EncodeDataFrame(acks, frags)
	gotAcks, gotFrags, err := DecodeDataFrame(raw)
	require.NoError(t, err)
	require.Equal(t, acks, gotAcks)
	require.Equal(t, frags, gotFrags)
}

func TestDataFrame_EmptyIsValid(t *testing.T) {
	raw := EncodeDataFrame(nil, nil)
	acks, frags, err := DecodeDataFrame(raw)
	require.NoError(t, err)
	require.Empty(t, acks)
	require.Empty(t, frags)
}

func TestDataFrame_TruncatedFails(t *testing.T) {
	_, _, err := DecodeDataFrame([]byte{1, 0, 0})
	require.Error(t, err)
}
