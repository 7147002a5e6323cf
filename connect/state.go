package connect

import (
	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Status of a registry.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
)

// Connection is a live session between a connector and a chain.
type Connection struct {
	ChainID   string
	Connector Connector
	Username  string
	Accounts  []grug.Address
}

// State is a snapshot of a registry. Connections is the owning table,
// Connectors indexes it by chain id.
type State struct {
	Connections map[UID]Connection
	Connectors  map[string]UID
	Status      Status
}

func newState() State {
	return State{
		Connections: make(map[UID]Connection),
		Connectors:  make(map[string]UID),
		Status:      StatusDisconnected,
	}
}

// Connection returns the connection of the given chain.
func (s State) Connection(chainID string) (Connection, bool) {
	uid, ok := s.Connectors[chainID]
	if !ok {
		return Connection{}, false
	}
	c, ok := s.Connections[uid]
	return c, ok
}

func (s State) clone() State {
	res := State{
		Connections: make(map[UID]Connection, len(s.Connections)),
		Connectors:  make(map[string]UID, len(s.Connectors)),
		Status:      s.Status,
	}
	for uid, c := range s.Connections {
		c.Accounts = append([]grug.Address(nil), c.Accounts...)
		res.Connections[uid] = c
	}
	for chain, uid := range s.Connectors {
		res.Connectors[chain] = uid
	}
	return res
}

// reindex rebuilds the chain index from the connections.
func (s *State) reindex() {
	s.Connectors = make(map[string]UID, len(s.Connections))
	for uid, c := range s.Connections {
		s.Connectors[c.ChainID] = uid
	}
}

// put inserts a connection. Any connection of the same connector or on the
// same chain is replaced.
func (s *State) put(c Connection) {
	uid := c.Connector.UID()
	for other, existing := range s.Connections {
		if existing.ChainID == c.ChainID && other != uid {
			delete(s.Connections, other)
		}
	}
	s.Connections[uid] = c
	s.reindex()
}

// remove deletes the connection of the connector. Removing the last one
// resets both tables.
func (s *State) remove(uid UID) {
	delete(s.Connections, uid)
	if len(s.Connections) == 0 {
		s.Connections = make(map[UID]Connection)
		s.Connectors = make(map[string]UID)
		s.Status = StatusDisconnected
		return
	}
	s.reindex()
}

// settle sets the status implied by the connections.
func (s *State) settle() {
	if len(s.Connections) > 0 {
		s.Status = StatusConnected
	} else {
		s.Status = StatusDisconnected
	}
}

// Validate checks that both tables agree and that the status matches them.
// Connecting and reconnecting are transitional and hold with any content.
func (s State) Validate() error {
	var errs error
	for chain, uid := range s.Connectors {
		c, ok := s.Connections[uid]
		if !ok {
			errs = errors.AppendField(errs, "Connectors."+chain, errors.Wrapf(errors.ErrInvalidState, "unknown connector %s", uid))
			continue
		}
		if c.ChainID != chain {
			errs = errors.AppendField(errs, "Connectors."+chain, errors.Wrapf(errors.ErrInvalidState, "connector %s is connected to %s", uid, c.ChainID))
		}
	}
	for uid, c := range s.Connections {
		if c.Connector == nil {
			errs = errors.AppendField(errs, "Connections."+string(uid), errors.Wrap(errors.ErrInvalidState, "no connector"))
			continue
		}
		if c.Connector.UID() != uid {
			errs = errors.AppendField(errs, "Connections."+string(uid), errors.Wrapf(errors.ErrInvalidState, "keyed by %s, connector is %s", uid, c.Connector.UID()))
		}
		if s.Connectors[c.ChainID] != uid {
			errs = errors.AppendField(errs, "Connections."+string(uid), errors.Wrapf(errors.ErrInvalidState, "chain %s is not indexed", c.ChainID))
		}
	}
	switch s.Status {
	case StatusConnected:
		if len(s.Connections) == 0 {
			errs = errors.AppendField(errs, "Status", errors.Wrap(errors.ErrInvalidState, "connected without connections"))
		}
	case StatusDisconnected:
		if len(s.Connections) != 0 {
			errs = errors.AppendField(errs, "Status", errors.Wrapf(errors.ErrInvalidState, "disconnected with %d connections", len(s.Connections)))
		}
	case StatusConnecting, StatusReconnecting:
	default:
		errs = errors.AppendField(errs, "Status", errors.Wrapf(errors.ErrInvalidState, "unknown status %q", s.Status))
	}
	return errs
}
