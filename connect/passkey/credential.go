package passkey

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
)

// ClientDataTypeGet is the client data type of an assertion.
const ClientDataTypeGet = "webauthn.get"

// flagUserPresent is set in the authenticator data flags when the user
// confirmed the prompt.
const flagUserPresent = 0x01

// authenticatorData starts with the 32 byte relying party id hash followed
// by the flags byte and a 4 byte counter.
const minAuthenticatorData = 32 + 1 + 4

// TxCredential is the transaction credential of a passkey account.
type TxCredential struct {
	Passkey *WebAuthnCredential `json:"passkey"`
}

// WebAuthnCredential carries an assertion in the form account contracts
// verify.
type WebAuthnCredential struct {
	Sig               grug.Binary `json:"sig"`
	ClientData        grug.Binary `json:"client_data"`
	AuthenticatorData grug.Binary `json:"authenticator_data"`
}

// ClientData is the subset of the collected client data that is checked.
type ClientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// Challenge returns the challenge presented to the authenticator to sign
// the given sign bytes.
func Challenge(signBytes []byte) string {
	return base64.RawURLEncoding.EncodeToString(signBytes)
}

// MarshalCredential serializes an assertion into a transaction credential.
func MarshalCredential(a *Assertion) ([]byte, error) {
	if a == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "assertion")
	}
	return json.Marshal(TxCredential{Passkey: &WebAuthnCredential{
		Sig:               a.Signature,
		ClientData:        a.ClientDataJSON,
		AuthenticatorData: a.AuthenticatorData,
	}})
}

// VerifyCredential checks a transaction credential produced by a passkey
// against the P-256 public key of the account. The collected client data
// must challenge exactly the sign bytes.
func VerifyCredential(pubKey, signBytes, credential []byte) error {
	var cred TxCredential
	if err := json.Unmarshal(credential, &cred); err != nil {
		return errors.Wrapf(errors.ErrUnauthorized, "malformed credential: %s", err)
	}
	if cred.Passkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "not a passkey credential")
	}
	w := cred.Passkey

	var cd ClientData
	if err := json.Unmarshal(w.ClientData, &cd); err != nil {
		return errors.Wrapf(errors.ErrUnauthorized, "malformed client data: %s", err)
	}
	if cd.Type != ClientDataTypeGet {
		return errors.Wrapf(errors.ErrUnauthorized, "client data type %q", cd.Type)
	}
	if cd.Challenge != Challenge(signBytes) {
		return errors.Wrap(errors.ErrUnauthorized, "challenge does not match sign bytes")
	}
	if len(w.AuthenticatorData) < minAuthenticatorData {
		return errors.Wrapf(errors.ErrUnauthorized, "authenticator data of %d bytes", len(w.AuthenticatorData))
	}
	if w.AuthenticatorData[32]&flagUserPresent == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "user not present")
	}

	ok, err := crypto.Verify(grug.KeyTypeSecp256r1, pubKey, AssertionDigest(w.AuthenticatorData, w.ClientData), w.Sig)
	if err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	return nil
}

// AssertionDigest returns sha256(authenticatorData | sha256(clientData)),
// the digest signed by an authenticator.
func AssertionDigest(authenticatorData, clientDataJSON []byte) []byte {
	cd := sha256.Sum256(clientDataJSON)
	h := sha256.Sum256(bytes.Join([][]byte{authenticatorData, cd[:]}, nil))
	return h[:]
}
