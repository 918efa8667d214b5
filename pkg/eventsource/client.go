package eventsource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/gorilla/websocket"
)

// Driver is the live feed an eventsource.Source consumes: a channel of
// demultiplexed RawEvents and a channel that carries exactly one error when
// the underlying connection dies. Closing Events without a prior send on
// Errs means a clean shutdown was requested by the caller.
type Driver struct {
	Events <-chan RawEvent
	Errs   <-chan error
}

// Dialer opens a Driver against a chain's RPC websocket endpoint. The real
// implementation wraps gorilla/websocket; tests substitute a fake that
// replays a scripted sequence of RawEvents and errors.
type Dialer interface {
	Dial(ctx context.Context, endpoint string, queries []string) (*Driver, closer, error)
}

type closer interface {
	Close() error
}

// WSDialer is the production Dialer, speaking the Tendermint RPC websocket
// subscribe protocol over gorilla/websocket (pack-attested: other_examples
// manifests for lavabyrd-tendermint, furychain-furya-relayer and several
// other chain clients all depend on gorilla/websocket for exactly this).
type WSDialer struct {
	DialTimeout time.Duration
}

func NewWSDialer() *WSDialer {
	return &WSDialer{DialTimeout: 10 * time.Second}
}

func (d *WSDialer) Dial(ctx context.Context, endpoint string, queries []string) (*Driver, closer, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.dialTimeout()}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: dial %s: %w", chain.ErrClientSubscriptionFailed, endpoint, err)
	}

	for _, q := range queries {
		if err := sendSubscribe(conn, q); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("%w: subscribe %q: %w", chain.ErrClientSubscriptionFailed, q, err)
		}
	}

	events := make(chan RawEvent, 256)
	errs := make(chan error, 1)
	go readLoop(conn, events, errs)

	return &Driver{Events: events, Errs: errs}, conn, nil
}

func (d *WSDialer) dialTimeout() time.Duration {
	if d.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return d.DialTimeout
}

var subscribeID int64

func sendSubscribe(conn *websocket.Conn, query string) error {
	id := atomic.AddInt64(&subscribeID, 1)
	req := struct {
		JSONRPC string         `json:"jsonrpc"`
		ID      string         `json:"id"`
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
	}{
		JSONRPC: "2.0",
		ID:      strconv.FormatInt(id, 10),
		Method:  "subscribe",
		Params:  map[string]any{"query": query},
	}
	return conn.WriteJSON(req)
}

// rpcMessage is the subset of a Tendermint RPC subscription push this
// driver cares about: the composite-keyed ABCI event map, keyed as
// "<event_type>.<attribute>", plus the "tm.event" marker distinguishing a
// NewBlock push from a Tx push.
type rpcMessage struct {
	Result struct {
		Events map[string][]string `json:"events"`
		Data   struct {
			Value struct {
				Height string `json:"height"`
			} `json:"value"`
		} `json:"data"`
	} `json:"result"`
}

func readLoop(conn *websocket.Conn, events chan<- RawEvent, errs chan<- error) {
	defer close(events)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			errs <- fmt.Errorf("%w: read: %w", chain.ErrTransient, err)
			return
		}

		var msg rpcMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed frame: drop it, stream stays up (§4.B edge case).
			continue
		}
		if msg.Result.Events == nil {
			continue
		}

		for _, ev := range demux(msg.Result.Events, msg.Result.Data.Value.Height) {
			events <- ev
		}
	}
}

// demux splits Tendermint's composite-keyed event map ("send_packet.packet_sequence"
// -> ["3"]) into one RawEvent per event-type occurrence. Multiple packet
// events in the same block (e.g. several sends in one Tx, or across
// several Txs at the same height) arrive as parallel array elements under
// the same key, aligned by index within that event type.
func demux(raw map[string][]string, heightStr string) []RawEvent {
	height, _ := strconv.ParseUint(heightStr, 10, 64)
	if ts, ok := raw["tm.event"]; ok && len(ts) > 0 && ts[0] == "NewBlock" {
		return []RawEvent{{Height: height, Kind: "new_block"}}
	}

	byKind := map[string]map[string][]string{}
	for compositeKey, values := range raw {
		kind, attr, ok := splitCompositeKey(compositeKey)
		if !ok {
			continue
		}
		if _, ok := byKind[kind]; !ok {
			byKind[kind] = map[string][]string{}
		}
		byKind[kind][attr] = values
	}

	var out []RawEvent
	for kind, attrs := range byKind {
		n := maxLen(attrs)
		for i := 0; i < n; i++ {
			occurrence := map[string]string{}
			for attr, values := range attrs {
				if i < len(values) {
					occurrence[attr] = values[i]
				}
			}
			out = append(out, RawEvent{Height: height, Kind: kind, Attributes: occurrence})
		}
	}
	return out
}

func splitCompositeKey(key string) (kind, attr string, ok bool) {
	idx := strings.Index(key, ".")
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

func maxLen(attrs map[string][]string) int {
	n := 0
	for _, v := range attrs {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}
