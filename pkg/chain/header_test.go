package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/anypb"
)

func TestHeaderRegistryRoundTrip(t *testing.T) {
	reg := DefaultRegistry()

	h := &TendermintHeader{
		TrustedHeight: Height{RevisionNumber: 1, RevisionHeight: 100},
		SignedHeader:  []byte("signed-header-bytes"),
		ValidatorSet:  []byte("validator-set-bytes"),
	}

	any, err := reg.EncodeAny(h)
	require.NoError(t, err)
	require.Equal(t, TendermintHeaderTypeURL, any.GetTypeUrl())

	decoded, err := reg.DecodeAny(any)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestHeaderRegistryUnknownTypeURL(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.DecodeAny(&anypb.Any{TypeUrl: "/some.other.Header", Value: []byte("x")})
	require.ErrorIs(t, err, ErrUnknownHeaderType)
}

func TestExpectTendermintMismatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("/other.Header", func(b []byte) (Header, error) {
		return &otherHeader{}, nil
	})

	any := &anypb.Any{TypeUrl: "/other.Header", Value: nil}
	decoded, err := reg.DecodeAny(any)
	require.NoError(t, err)

	_, err = ExpectTendermint(decoded)
	require.ErrorIs(t, err, ErrMismatchClientHeaderFormat)
}

type otherHeader struct{}

func (otherHeader) TypeURL() string          { return "/other.Header" }
func (otherHeader) Marshal() ([]byte, error) { return nil, nil }
