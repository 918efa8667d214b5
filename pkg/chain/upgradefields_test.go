package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpgradeFieldsRoundTrip(t *testing.T) {
	u := UpgradeFields{
		Ordering:       ChannelOrderUnordered,
		ConnectionHops: []ConnectionID{"connection-0", "connection-12"},
		Version:        "ics20-1",
	}

	decoded, err := DecodeUpgradeFields(u.Encode())
	require.NoError(t, err)
	require.Equal(t, u, decoded)
}

func TestUpgradeFieldsDecodeAggregatesBadHops(t *testing.T) {
	raw := RawUpgradeFields{
		Ordering:       ChannelOrderOrdered,
		ConnectionHops: []string{"connection-0", "not-a-connection", "also bad"},
		Version:        "ics20-1",
	}

	_, err := DecodeUpgradeFields(raw)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDecode)
	require.Contains(t, err.Error(), `"not-a-connection"`)
	require.Contains(t, err.Error(), `"also bad"`)
}

func TestUpgradeFieldsDecodeEmptyHops(t *testing.T) {
	decoded, err := DecodeUpgradeFields(RawUpgradeFields{Ordering: ChannelOrderUnordered})
	require.NoError(t, err)
	require.Empty(t, decoded.ConnectionHops)
}
