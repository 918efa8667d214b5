// Package relay pairs a source and destination chain with the two client
// ids that relate them, and exposes the Target polymorphism (§4.E) so the
// packet relayer can address "the chain I'm submitting to" and "the other
// one" without branching on direction everywhere.
package relay
