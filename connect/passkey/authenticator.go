package passkey

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"github.com/left-curve/grug-go/errors"
)

// ErrDeclined is returned by an Authenticator when the user dismissed the
// prompt.
var ErrDeclined = pkgerrors.New("passkey prompt declined")

// notAllowedName is the name platforms give to a dismissed prompt.
const notAllowedName = "NotAllowedError"

// Credential is a public key credential registered with an authenticator.
type Credential struct {
	ID []byte
	// PublicKey is a P-256 point, compressed or not.
	PublicKey []byte
}

// Assertion is the answer of an authenticator to a challenge.
type Assertion struct {
	CredentialID      []byte
	AuthenticatorData []byte
	ClientDataJSON    []byte
	// Signature is a DER encoded ECDSA signature of
	// sha256(AuthenticatorData | sha256(ClientDataJSON)).
	Signature []byte
}

// Authenticator is the platform credential API.
type Authenticator interface {
	// Credential returns the credential of the user for the relying party,
	// registering a new one when the user has none.
	Credential(ctx context.Context, rpID, username string) (*Credential, error)
	// Assert asks the user to sign challenge with the credential.
	Assert(ctx context.Context, rpID string, credentialID, challenge []byte) (*Assertion, error)
}

// rejected translates a dismissed prompt into errors.ErrUserRejected.
func rejected(err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.Cause(err) == ErrDeclined {
		return errors.Wrap(errors.ErrUserRejected, err.Error())
	}
	if named, ok := pkgerrors.Cause(err).(interface{ Name() string }); ok && named.Name() == notAllowedName {
		return errors.Wrap(errors.ErrUserRejected, err.Error())
	}
	return errors.Wrap(errors.ErrUnauthorized, err.Error())
}
