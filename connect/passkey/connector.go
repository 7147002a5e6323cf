package passkey

import (
	"context"
	"sync"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/connect"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
)

// DefaultID is the backend id of passkey connectors.
const DefaultID = "passkey"

// Config of a passkey connector. Factory and AccountCodeHash describe the
// account factory that registered the passkey accounts.
type Config struct {
	ID              string
	Name            string
	Icon            string
	RPID            string
	Authenticator   Authenticator
	Factory         grug.Address
	AccountCodeHash grug.Hash
	// Serial is the factory serial the account was registered with.
	Serial uint32
}

// Connector signs transactions with a platform passkey.
type Connector struct {
	conf Config
	uid  connect.UID

	mu   sync.Mutex
	cred *Credential
}

var _ connect.Connector = (*Connector)(nil)

func NewConnector(conf Config) *Connector {
	if conf.ID == "" {
		conf.ID = DefaultID
	}
	if conf.Name == "" {
		conf.Name = "Passkey"
	}
	return &Connector{conf: conf, uid: connect.NewUID()}
}

func (c *Connector) ID() string       { return c.conf.ID }
func (c *Connector) UID() connect.UID { return c.uid }
func (c *Connector) Name() string     { return c.conf.Name }
func (c *Connector) Icon() string     { return c.conf.Icon }

// Connect fetches the credential of the user and returns the account it
// controls.
func (c *Connector) Connect(ctx context.Context, params connect.ConnectParams) ([]grug.Address, error) {
	if c.conf.Authenticator == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no authenticator")
	}
	if params.Username == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "username")
	}
	cred, err := c.conf.Authenticator.Credential(ctx, c.conf.RPID, params.Username)
	if err != nil {
		return nil, rejected(err)
	}
	pubKey, err := crypto.CompressSecp256r1(cred.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "credential public key")
	}
	cred = &Credential{ID: cred.ID, PublicKey: pubKey}

	addr, err := AccountAddress(c.conf.Factory, c.conf.AccountCodeHash, pubKey, c.conf.Serial)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()
	return []grug.Address{addr}, nil
}

// Disconnect forgets the credential.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
	return nil
}

// Signer returns a signer prompting the user for every transaction.
func (c *Connector) Signer(ctx context.Context, chainID string) (crypto.Signer, error) {
	c.mu.Lock()
	cred := c.cred
	c.mu.Unlock()
	if cred == nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "%s is not connected", c.conf.ID)
	}
	return &signer{ctx: ctx, auth: c.conf.Authenticator, rpID: c.conf.RPID, cred: cred}, nil
}

// AccountAddress returns the address of the account the factory registered
// for a passkey.
func AccountAddress(factory grug.Address, accountCodeHash grug.Hash, pubKey []byte, serial uint32) (grug.Address, error) {
	if err := factory.Validate(); err != nil {
		return nil, errors.Wrap(err, "factory")
	}
	if err := accountCodeHash.Validate(); err != nil {
		return nil, errors.Wrap(err, "account code hash")
	}
	salt, err := grug.DeriveSalt(grug.KeyTypeSecp256r1, pubKey, serial)
	if err != nil {
		return nil, err
	}
	return grug.DeriveAddress(factory, accountCodeHash, salt), nil
}

type signer struct {
	ctx  context.Context
	auth Authenticator
	rpID string
	cred *Credential
}

func (s *signer) KeyType() grug.KeyType { return grug.KeyTypeSecp256r1 }
func (s *signer) PublicKey() []byte     { return s.cred.PublicKey }

// Sign returns a TxCredential asserting the sign bytes.
func (s *signer) Sign(signBytes []byte) ([]byte, error) {
	a, err := s.auth.Assert(s.ctx, s.rpID, s.cred.ID, signBytes)
	if err != nil {
		return nil, rejected(err)
	}
	return MarshalCredential(a)
}
