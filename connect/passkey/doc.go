/*
Package passkey implements a connector for accounts controlled by a WebAuthn
credential on the P-256 curve.

The authenticator is asked to sign a challenge derived from the sign bytes
of the transaction. The resulting assertion is sent as the credential of the
transaction, see VerifyCredential for the checks an account runs on it.
*/
package passkey
