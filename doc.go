/*

Package grug defines the wire types shared by everything that talks to a grug
chain: addresses, hashes, coins, messages, query requests and responses,
transactions and store proofs. It also contains the codec used to serialize
them and the pure functions used to derive contract addresses, so that any
party can reproduce them without access to the chain.

Look into the client package for querying the chain and broadcasting
transactions, and into the connect package for managing wallet connections.

*/

package grug
