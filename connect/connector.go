package connect

import (
	"context"

	"github.com/google/uuid"
	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/crypto"
)

// UID identifies a connector instance. It changes with every process, use
// Connector.ID to find the same backend again after a restart.
type UID string

// NewUID returns a random instance id.
func NewUID() UID {
	return UID(uuid.New().String())
}

// ConnectParams are passed to a connector when a connection is requested.
type ConnectParams struct {
	ChainID  string
	Username string
}

// Connector is a wallet backend.
type Connector interface {
	// ID is the identity of the backend, stable across restarts.
	ID() string
	// UID is the identity of this instance.
	UID() UID
	Name() string
	// Icon is a reference to an image, usually an URL.
	Icon() string

	// Connect asks the wallet for the accounts of the user on the given
	// chain. It may prompt the user, a declined prompt returns an
	// errors.ErrUserRejected error.
	Connect(ctx context.Context, params ConnectParams) ([]grug.Address, error)
	Disconnect(ctx context.Context) error

	// Signer returns the key authorizing transactions of the connected
	// account on the given chain.
	Signer(ctx context.Context, chainID string) (crypto.Signer, error)
}
