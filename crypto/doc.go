/*
Package crypto provides the signing keys accepted by the account contracts.

A Signer signs sign bytes (see grug.SignBytes), which already are a sha256
digest, so signers never hash their input again. Signatures are DER
encoded.

Two curves are supported:

	secp256k1  keys usually derived from a mnemonic seed (BIP-32/44)
	secp256r1  keys held by platform authenticators (passkeys)
*/
package crypto
