/*
Package chain defines the contract a blockchain must satisfy to take part in
a relay: the identity, message, event and packet types, the capability
interfaces a concrete chain implements, and the closed error taxonomy the
rest of the relayer switches on.

Nothing in this package talks to a real chain. It is pure data and pure
interface, the same way the teacher's pkg/types package is pure data and
pkg/health's Checker is a pure capability interface — concrete transport
(gRPC, websocket RPC, signing) lives outside the core and is wired in by
whoever constructs a Chain value.
*/
package chain
