package connect

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tendermint/tendermint/libs/log"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Registry owns the connections between registered connectors and chains.
// All methods are safe for concurrent use. The state lock is never held
// while a connector is called.
type Registry struct {
	connectors []Connector
	storage    Storage
	logger     log.Logger

	mu    sync.Mutex
	state State

	// pubMu orders publications, so that observers and storage see the
	// snapshots in the order of the mutations.
	pubMu  sync.Mutex
	subs   map[int]func(State)
	nextID int

	reconnecting int32
}

// Option configures a Registry.
type Option func(*Registry)

// WithStorage persists the session of the registry. The default storage
// lives in memory.
func WithStorage(s Storage) Option {
	return func(r *Registry) { r.storage = s }
}

// WithLogger sets the logger, the default discards everything.
func WithLogger(l log.Logger) Option {
	return func(r *Registry) { r.logger = l.With("module", "connect") }
}

// NewRegistry returns a disconnected registry. Connectors are searched in
// the given order.
func NewRegistry(connectors []Connector, opts ...Option) *Registry {
	r := &Registry{
		connectors: append([]Connector(nil), connectors...),
		storage:    NewMemStorage(),
		logger:     log.NewNopLogger(),
		state:      newState(),
		subs:       make(map[int]func(State)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Connectors returns the registered connectors.
func (r *Registry) Connectors() []Connector {
	return append([]Connector(nil), r.connectors...)
}

// Connector returns the registered connector with the given backend id.
func (r *Registry) Connector(id string) (Connector, bool) {
	for _, c := range r.connectors {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// State returns a snapshot of the current state.
func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Subscribe registers fn to be called with every published state. The
// returned function removes the subscription. fn runs while publications
// are serialized and must not call Connect, Disconnect or Reconnect.
func (r *Registry) Subscribe(fn func(State)) func() {
	r.pubMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.pubMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.pubMu.Lock()
			delete(r.subs, id)
			r.pubMu.Unlock()
		})
	}
}

// Connect connects the connector to the chain. A previous connection on the
// same chain is replaced.
func (r *Registry) Connect(ctx context.Context, c Connector, chainID, username string) error {
	if c == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil connector")
	}
	if chainID == "" {
		return errors.Wrap(errors.ErrEmpty, "chain id")
	}
	r.commit(func(s *State) { s.Status = StatusConnecting })

	accounts, err := c.Connect(ctx, ConnectParams{ChainID: chainID, Username: username})
	if err != nil {
		r.commit((*State).settle)
		r.logger.Info("connect failed", "connector", c.ID(), "chain", chainID, "err", err)
		return err
	}

	r.commit(func(s *State) {
		s.put(Connection{
			ChainID:   chainID,
			Connector: c,
			Username:  username,
			Accounts:  accounts,
		})
		s.Status = StatusConnected
	})
	r.logger.Info("connected", "connector", c.ID(), "chain", chainID, "accounts", len(accounts))
	return nil
}

// DisconnectParams select the connection to close. Exactly one field must
// be set.
type DisconnectParams struct {
	ConnectorUID UID
	ChainID      string
}

// Disconnect closes a connection. Disconnecting a connector that holds no
// connection is not an error.
func (r *Registry) Disconnect(ctx context.Context, p DisconnectParams) error {
	if (p.ConnectorUID == "") == (p.ChainID == "") {
		return errors.Wrap(errors.ErrInvalidSelector, "exactly one of connector uid and chain id is required")
	}

	r.mu.Lock()
	var conn Connection
	var found bool
	if p.ChainID != "" {
		conn, found = r.state.Connection(p.ChainID)
		if !found {
			r.mu.Unlock()
			return errors.Wrap(errors.ErrNoConnectorForChain, p.ChainID)
		}
	} else {
		conn, found = r.state.Connections[p.ConnectorUID]
	}
	r.mu.Unlock()
	if !found {
		return nil
	}

	if err := conn.Connector.Disconnect(ctx); err != nil {
		return errors.Wrapf(err, "disconnect %s", conn.Connector.ID())
	}
	r.commit(func(s *State) { s.remove(conn.Connector.UID()) })
	r.logger.Info("disconnected", "connector", conn.Connector.ID(), "chain", conn.ChainID)
	return nil
}

// Reconnect rebuilds the connections from the persisted session. Live
// connections are dropped first, so a connection whose connector fails to
// reconnect is gone afterwards. A call while another reconnect is running
// returns at once.
func (r *Registry) Reconnect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.reconnecting, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&r.reconnecting, 0)

	sess, err := r.storage.Load()
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	if sess == nil || len(sess.Connections) == 0 {
		r.commit((*State).settle)
		return nil
	}

	r.commit(func(s *State) {
		*s = newState()
		s.Status = StatusReconnecting
	})
	for _, prev := range sess.Connections {
		r.reconnect(ctx, prev)
	}
	r.commit((*State).settle)
	return nil
}

func (r *Registry) reconnect(ctx context.Context, prev SessionConnection) {
	c, ok := r.Connector(prev.ConnectorID)
	if !ok {
		r.logger.Debug("connector not registered", "connector", prev.ConnectorID, "chain", prev.ChainID)
		return
	}
	accounts, err := c.Connect(ctx, ConnectParams{ChainID: prev.ChainID, Username: prev.Username})
	if err != nil {
		r.logger.Debug("reconnect failed", "connector", prev.ConnectorID, "chain", prev.ChainID, "err", err)
		r.publish()
		return
	}
	if len(accounts) == 0 {
		accounts = append([]grug.Address(nil), prev.Accounts...)
	}
	r.commit(func(s *State) {
		s.put(Connection{
			ChainID:   prev.ChainID,
			Connector: c,
			Username:  prev.Username,
			Accounts:  accounts,
		})
	})
}

// commit applies fn to the state and publishes the result.
func (r *Registry) commit(fn func(*State)) {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()
	fn(&r.state)
	snapshot := r.state.clone()
	r.mu.Unlock()

	r.deliver(snapshot)
}

// publish notifies the current state without changing it.
func (r *Registry) publish() {
	r.commit(func(*State) {})
}

// deliver must be called with pubMu held.
func (r *Registry) deliver(s State) {
	if err := s.Validate(); err != nil {
		r.logger.Error("inconsistent connection state", "err", err)
	}
	if s.Status != StatusConnecting && s.Status != StatusReconnecting {
		if err := r.storage.Save(NewSession(s)); err != nil {
			r.logger.Error("cannot persist session", "err", err)
		}
	}
	for _, fn := range r.subs {
		fn(s.clone())
	}
}
