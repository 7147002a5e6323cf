package connect_test

import (
	"context"
	"sync"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/connect"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
)

// mockConnector answers Connect with preset accounts. When gate is set,
// Connect blocks until it is closed.
type mockConnector struct {
	id  string
	uid connect.UID

	mu            sync.Mutex
	accounts      []grug.Address
	connectErr    error
	disconnectErr error
	gate          chan struct{}
	connects      []connect.ConnectParams
	disconnects   int
}

var _ connect.Connector = (*mockConnector)(nil)

func newMock(id string, accounts ...grug.Address) *mockConnector {
	return &mockConnector{id: id, uid: connect.NewUID(), accounts: accounts}
}

func (m *mockConnector) ID() string       { return m.id }
func (m *mockConnector) UID() connect.UID { return m.uid }
func (m *mockConnector) Name() string     { return m.id }
func (m *mockConnector) Icon() string     { return "" }

func (m *mockConnector) Connect(ctx context.Context, p connect.ConnectParams) ([]grug.Address, error) {
	m.mu.Lock()
	m.connects = append(m.connects, p)
	gate := m.gate
	accounts, err := m.accounts, m.connectErr
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrNetwork, ctx.Err().Error())
		}
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (m *mockConnector) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
	return m.disconnectErr
}

func (m *mockConnector) Signer(ctx context.Context, chainID string) (crypto.Signer, error) {
	return crypto.GenSecp256k1()
}

func (m *mockConnector) Connects() []connect.ConnectParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]connect.ConnectParams(nil), m.connects...)
}

func (m *mockConnector) Disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

var bg = context.Background()

func addr(b byte) grug.Address {
	a := make(grug.Address, grug.AddressLength)
	a[grug.AddressLength-1] = b
	return a
}

// recorder collects published states.
type recorder struct {
	mu     sync.Mutex
	states []connect.State
}

func (r *recorder) observe(s connect.State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) Statuses() []connect.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]connect.Status, len(r.states))
	for i, s := range r.states {
		res[i] = s.Status
	}
	return res
}
