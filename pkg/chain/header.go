package chain

import (
	"encoding/json"
	"fmt"
	"sync"

	"google.golang.org/protobuf/types/known/anypb"
)

// TendermintHeaderTypeURL is the Any type URL for a Tendermint-style light
// client header, per §6: header Any type URLs include
// "/ibc.lightclients.tendermint.v1.Header".
const TendermintHeaderTypeURL = "/ibc.lightclients.tendermint.v1.Header"

// Header is a client-update header, tagged by its protobuf Any type URL.
// §9's design note replaces the original's runtime downcasting (AsAny) with
// this tagged-variant-plus-registry pattern: the registry maps a type URL
// to the client implementation that understands it, instead of every caller
// type-switching on a concrete Go type.
type Header interface {
	// TypeURL identifies which registered client implementation this
	// header belongs to.
	TypeURL() string

	// Marshal renders the header's inner value bytes (the Any envelope's
	// Value field; TypeURL carries the type information).
	Marshal() ([]byte, error)
}

// TendermintHeader is the only Header variant this module ships a codec
// for. SignedHeader and ValidatorSet are opaque — the light-client
// verification math that would otherwise interpret them is out of scope
// (§1 Non-goals).
type TendermintHeader struct {
	TrustedHeight Height `json:"trusted_height"`
	SignedHeader  []byte `json:"signed_header"`
	ValidatorSet  []byte `json:"validator_set"`
}

// TypeURL implements Header.
func (h *TendermintHeader) TypeURL() string { return TendermintHeaderTypeURL }

// Marshal implements Header.
func (h *TendermintHeader) Marshal() ([]byte, error) {
	return json.Marshal(h)
}

func decodeTendermintHeader(value []byte) (Header, error) {
	var h TendermintHeader
	if err := json.Unmarshal(value, &h); err != nil {
		return nil, fmt.Errorf("%w: tendermint header: %v", ErrDecode, err)
	}
	return &h, nil
}

// decodeFunc turns an Any's Value bytes back into a concrete Header.
type decodeFunc func([]byte) (Header, error)

// Registry maps a protobuf Any type URL to the decoder for that client
// implementation. It is the core's only mechanism for picking "the right
// client implementation for an AnyHeader" (§9) — no reflection, no type
// switch over every known Go type.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]decodeFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]decodeFunc)}
}

// DefaultRegistry returns a registry pre-populated with the Tendermint
// client codec, the only variant this module ships.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TendermintHeaderTypeURL, decodeTendermintHeader)
	return r
}

// Register installs the decoder for a type URL. Registering the same URL
// twice replaces the previous decoder.
func (r *Registry) Register(typeURL string, decode decodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[typeURL] = decode
}

// EncodeAny wraps h in a protobuf Any envelope.
func (r *Registry) EncodeAny(h Header) (*anypb.Any, error) {
	value, err := h.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: marshal header: %v", ErrDecode, err)
	}
	return &anypb.Any{TypeUrl: h.TypeURL(), Value: value}, nil
}

// DecodeAny recovers the concrete Header a protobuf Any envelope carries.
// An unregistered type URL fails with ErrUnknownHeaderType (§6).
func (r *Registry) DecodeAny(any *anypb.Any) (Header, error) {
	r.mu.RLock()
	decode, ok := r.decoders[any.GetTypeUrl()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHeaderType, any.GetTypeUrl())
	}
	return decode(any.GetValue())
}

// ExpectTendermint asserts h is a *TendermintHeader, returning
// ErrMismatchClientHeaderFormat if some other registered variant was
// supplied to a client implementation that only understands Tendermint
// headers.
func ExpectTendermint(h Header) (*TendermintHeader, error) {
	th, ok := h.(*TendermintHeader)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrMismatchClientHeaderFormat, TendermintHeaderTypeURL, h.TypeURL())
	}
	return th, nil
}
