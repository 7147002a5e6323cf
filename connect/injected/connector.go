package injected

import (
	"context"
	"sync"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/connect"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
)

// Methods understood by grug aware wallets.
const (
	MethodRequestAccounts = "grug_requestAccounts"
	MethodDisconnect      = "grug_disconnect"
	MethodPublicKey       = "grug_publicKey"
	MethodSignDigest      = "grug_signDigest"
)

// Config describes an injected wallet.
type Config struct {
	ID     string
	Name   string
	Icon   string
	Host   Host
	Lookup Lookup
}

// Connector talks to a wallet injected into its host.
type Connector struct {
	conf Config
	uid  connect.UID

	mu       sync.Mutex
	provider Provider
}

var _ connect.Connector = (*Connector)(nil)

// NewConnector returns a connector for the wallet. Without Lookup the
// provider is searched under the connector ID.
func NewConnector(conf Config) *Connector {
	if conf.Lookup == nil {
		conf.Lookup = ByName(conf.ID)
	}
	if conf.Name == "" {
		conf.Name = conf.ID
	}
	return &Connector{conf: conf, uid: connect.NewUID()}
}

func (c *Connector) ID() string       { return c.conf.ID }
func (c *Connector) UID() connect.UID { return c.uid }
func (c *Connector) Name() string     { return c.conf.Name }
func (c *Connector) Icon() string     { return c.conf.Icon }

type requestAccountsParams struct {
	ChainID  string `json:"chain_id"`
	Username string `json:"username,omitempty"`
}

// Connect asks the wallet for the accounts of the user.
func (c *Connector) Connect(ctx context.Context, params connect.ConnectParams) ([]grug.Address, error) {
	p, err := c.conf.Lookup(c.conf.Host)
	if err != nil {
		return nil, err
	}
	var accounts []grug.Address
	err = request(ctx, p, MethodRequestAccounts, requestAccountsParams{
		ChainID:  params.ChainID,
		Username: params.Username,
	}, &accounts)
	if err != nil {
		return nil, err
	}
	for i, a := range accounts {
		if err := a.Validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrUnexpectedResponse, "account %d: %s", i, err)
		}
	}

	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
	return accounts, nil
}

// Disconnect notifies the wallet and forgets the provider. When the wallet
// fails the request the provider is kept, so the connection stays usable.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	p := c.provider
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	if err := request(ctx, p, MethodDisconnect, nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	if c.provider == p {
		c.provider = nil
	}
	c.mu.Unlock()
	return nil
}

func (c *Connector) connected() (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "%s is not connected", c.conf.ID)
	}
	return c.provider, nil
}

type publicKeyResult struct {
	KeyType   grug.KeyType `json:"key_type"`
	PublicKey grug.Binary  `json:"public_key"`
}

// Signer returns a signer delegating to the wallet. The public key is
// fetched once.
func (c *Connector) Signer(ctx context.Context, chainID string) (crypto.Signer, error) {
	p, err := c.connected()
	if err != nil {
		return nil, err
	}
	var pk publicKeyResult
	if err := request(ctx, p, MethodPublicKey, requestAccountsParams{ChainID: chainID}, &pk); err != nil {
		return nil, err
	}
	if err := pk.KeyType.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet key")
	}
	if len(pk.PublicKey) == 0 {
		return nil, errors.Wrap(errors.ErrUnexpectedResponse, "wallet returned no public key")
	}
	return &signer{
		ctx:      ctx,
		provider: p,
		chainID:  chainID,
		keyType:  pk.KeyType,
		pubKey:   pk.PublicKey,
	}, nil
}

type signDigestParams struct {
	ChainID string      `json:"chain_id"`
	Digest  grug.Binary `json:"digest"`
}

// signer asks the wallet for every signature. The context of the Signer
// call bounds all requests.
type signer struct {
	ctx      context.Context
	provider Provider
	chainID  string
	keyType  grug.KeyType
	pubKey   []byte
}

func (s *signer) KeyType() grug.KeyType { return s.keyType }
func (s *signer) PublicKey() []byte     { return s.pubKey }

func (s *signer) Sign(digest []byte) ([]byte, error) {
	var sig grug.Binary
	if err := request(s.ctx, s.provider, MethodSignDigest, signDigestParams{ChainID: s.chainID, Digest: digest}, &sig); err != nil {
		return nil, err
	}
	if len(sig) == 0 {
		return nil, errors.Wrap(errors.ErrUnexpectedResponse, "wallet returned no signature")
	}
	return sig, nil
}
