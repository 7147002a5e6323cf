/*
Package connect tracks which wallet is connected to which chain.

A Connector is a wallet backend (an injected provider, a passkey). The
Registry owns all live connections, at most one per connector and one per
chain, and drives the connect, disconnect and reconnect transitions.
Readers receive immutable snapshots of the registry state, either by
calling State or by subscribing to every change.

Connections are persisted as a Session through a Storage so that a later
process can restore them with Reconnect.
*/
package connect
