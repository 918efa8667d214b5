package eventsource

import (
	"encoding/hex"
	"strconv"

	"github.com/cuemby/ibc-relayer/pkg/chain"
)

// RawEvent is one demultiplexed occurrence of a Tendermint RPC subscription
// event: either the chain's "tm.event":"NewBlock" marker, or a single
// occurrence of an ABCI event type ("send_packet", "write_acknowledgement",
// "acknowledge_packet", "timeout_packet", or anything else the chain
// happens to emit). Attributes holds that occurrence's composite-keyed
// values with the "<event_type>." prefix already stripped, e.g.
// Attributes["packet_src_port"] for a "send_packet.packet_src_port" key.
type RawEvent struct {
	Height     uint64
	Kind       string
	Attributes map[string]string
}

// decode turns a RawEvent into a chain.EventWithHeight. The second return
// value is false when the event should be silently dropped: an
// unrecognized Kind, or a recognized Kind missing a required attribute.
// Decode failures never tear down the subscription (§4.B edge case,
// scenario S2) — the caller logs and moves on to the next RawEvent.
func decode(raw RawEvent) (chain.EventWithHeight, bool) {
	height := chain.Height{RevisionHeight: raw.Height}

	switch raw.Kind {
	case "new_block":
		return chain.EventWithHeight{
			Event:  chain.Event{Type: chain.EventTypeNewBlock},
			Height: height,
		}, true

	case "send_packet":
		pkt, ok := parsePacket(raw.Attributes)
		if !ok {
			return chain.EventWithHeight{}, false
		}
		return chain.EventWithHeight{
			Event:  chain.Event{Type: chain.EventTypeSendPacket, Packet: pkt},
			Height: height,
		}, true

	case "write_acknowledgement":
		pkt, ok := parsePacket(raw.Attributes)
		if !ok {
			return chain.EventWithHeight{}, false
		}
		ack, ok := decodeHexAttr(raw.Attributes, "packet_ack")
		if !ok {
			return chain.EventWithHeight{}, false
		}
		return chain.EventWithHeight{
			Event: chain.Event{
				Type:            chain.EventTypeWriteAcknowledgement,
				Packet:          pkt,
				Acknowledgement: ack,
			},
			Height: height,
		}, true

	case "acknowledge_packet":
		pkt, ok := parsePacket(raw.Attributes)
		if !ok {
			return chain.EventWithHeight{}, false
		}
		return chain.EventWithHeight{
			Event:  chain.Event{Type: chain.EventTypeAcknowledgePacket, Packet: pkt},
			Height: height,
		}, true

	case "timeout_packet":
		pkt, ok := parsePacket(raw.Attributes)
		if !ok {
			return chain.EventWithHeight{}, false
		}
		return chain.EventWithHeight{
			Event:  chain.Event{Type: chain.EventTypeTimeoutPacket, Packet: pkt},
			Height: height,
		}, true

	default:
		return chain.EventWithHeight{}, false
	}
}

func parsePacket(attrs map[string]string) (chain.Packet, bool) {
	srcPort, ok := attrs["packet_src_port"]
	if !ok {
		return chain.Packet{}, false
	}
	srcChannel, ok := attrs["packet_src_channel"]
	if !ok {
		return chain.Packet{}, false
	}
	dstPort, ok := attrs["packet_dst_port"]
	if !ok {
		return chain.Packet{}, false
	}
	dstChannel, ok := attrs["packet_dst_channel"]
	if !ok {
		return chain.Packet{}, false
	}
	seqStr, ok := attrs["packet_sequence"]
	if !ok {
		return chain.Packet{}, false
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return chain.Packet{}, false
	}

	pkt := chain.Packet{
		SrcPort:    chain.PortID(srcPort),
		SrcChannel: chain.ChannelID(srcChannel),
		DstPort:    chain.PortID(dstPort),
		DstChannel: chain.ChannelID(dstChannel),
		Sequence:   chain.Sequence(seq),
	}
	if data, ok := decodeHexAttr(attrs, "packet_data"); ok {
		pkt.Data = data
	}
	if th, ok := attrs["packet_timeout_height"]; ok {
		if h, ok := parseHeightAttr(th); ok {
			pkt.TimeoutHeight = h
		}
	}
	if tt, ok := attrs["packet_timeout_timestamp"]; ok {
		if ns, err := strconv.ParseUint(tt, 10, 64); err == nil && ns > 0 {
			pkt.TimeoutTimestamp = chain.TimestampFromUnixNano(int64(ns))
		}
	}
	return pkt, true
}

func decodeHexAttr(attrs map[string]string, key string) ([]byte, bool) {
	v, ok := attrs[key]
	if !ok || v == "" {
		return nil, false
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, false
	}
	return b, true
}

// parseHeightAttr parses the conventional "revision-height" wire format
// used for IBC timeout-height attributes.
func parseHeightAttr(s string) (chain.Height, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			rn, err1 := strconv.ParseUint(s[:i], 10, 64)
			rh, err2 := strconv.ParseUint(s[i+1:], 10, 64)
			if err1 != nil || err2 != nil {
				return chain.Height{}, false
			}
			return chain.Height{RevisionNumber: rn, RevisionHeight: rh}, true
		}
	}
	return chain.Height{}, false
}
