// Package injected connects to wallets that inject a request based provider
// into their host environment, the way browser extension wallets do.
package injected
