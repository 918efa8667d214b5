package main

import (
	"fmt"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/mockchain"
)

// chainBuilders maps a --chain-a-backend/--chain-b-backend value to a
// constructor. "mock" is the only backend this module ships: §6 draws the
// chain coupling boundary at the chain.Chain interface itself ("no other
// chain coupling is permitted from the core"), and a production Cosmos
// SDK/Tendermint gRPC adapter pulls in a dependency tree (cosmos-sdk,
// ibc-go client libraries) that appears nowhere in the example corpus — the
// same split the original Hermes draws between its core relay crate and its
// separate relayer-cosmos adapter crate. Register additional backends here
// as they're built.
var chainBuilders = map[string]func(id chain.ID) chain.Chain{
	"mock": func(id chain.ID) chain.Chain { return mockchain.New(id) },
}

func buildChain(backend string, id chain.ID) (chain.Chain, error) {
	builder, ok := chainBuilders[backend]
	if !ok {
		return nil, fmt.Errorf("unknown chain backend %q (known: %s)", backend, knownBackends())
	}
	return builder(id), nil
}

func knownBackends() string {
	names := make([]string, 0, len(chainBuilders))
	for name := range chainBuilders {
		names = append(names, name)
	}
	return fmt.Sprint(names)
}
