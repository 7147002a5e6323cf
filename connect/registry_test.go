package connect_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/connect"
	"github.com/left-curve/grug-go/errors"
	grugassert "github.com/left-curve/grug-go/grugtest/assert"
)

func TestRegistryLifecycle(t *testing.T) {
	Convey("Given a registry with a metamask connector", t, func() {
		ctx := context.Background()
		metamask := newMock("metamask", addr(1))
		keplr := newMock("keplr", addr(2))
		reg := connect.NewRegistry([]connect.Connector{metamask, keplr})
		rec := &recorder{}
		unsubscribe := reg.Subscribe(rec.observe)
		defer unsubscribe()

		So(reg.State().Status, ShouldEqual, connect.StatusDisconnected)

		Convey("Connecting alice on local-1", func() {
			err := reg.Connect(ctx, metamask, "local-1", "alice")
			So(err, ShouldBeNil)

			state := reg.State()
			So(state.Status, ShouldEqual, connect.StatusConnected)
			So(state.Connectors["local-1"], ShouldEqual, metamask.UID())
			So(state.Connections[metamask.UID()].Username, ShouldEqual, "alice")
			So(state.Connections[metamask.UID()].Accounts, ShouldResemble, []grug.Address{addr(1)})
			So(state.Validate(), ShouldBeNil)
			So(rec.Statuses(), ShouldResemble, []connect.Status{connect.StatusConnecting, connect.StatusConnected})

			Convey("A second connector on the same chain replaces the first", func() {
				So(reg.Connect(ctx, keplr, "local-1", "bob"), ShouldBeNil)
				state := reg.State()
				So(len(state.Connections), ShouldEqual, 1)
				So(state.Connectors["local-1"], ShouldEqual, keplr.UID())
				So(state.Validate(), ShouldBeNil)
			})

			Convey("Disconnecting by chain resets the registry", func() {
				err := reg.Disconnect(ctx, connect.DisconnectParams{ChainID: "local-1"})
				So(err, ShouldBeNil)
				So(metamask.Disconnects(), ShouldEqual, 1)

				state := reg.State()
				So(state.Status, ShouldEqual, connect.StatusDisconnected)
				So(state.Connections, ShouldBeEmpty)
				So(state.Connectors, ShouldBeEmpty)
			})

			Convey("Disconnecting by connector uid keeps other chains", func() {
				So(reg.Connect(ctx, keplr, "osmo-1", "bob"), ShouldBeNil)
				err := reg.Disconnect(ctx, connect.DisconnectParams{ConnectorUID: metamask.UID()})
				So(err, ShouldBeNil)

				state := reg.State()
				So(state.Status, ShouldEqual, connect.StatusConnected)
				So(state.Connectors, ShouldResemble, map[string]connect.UID{"osmo-1": keplr.UID()})
				So(state.Validate(), ShouldBeNil)
			})

			Convey("A failing connector disconnect keeps the connection", func() {
				metamask.disconnectErr = errors.Wrap(errors.ErrNetwork, "wallet gone")
				err := reg.Disconnect(ctx, connect.DisconnectParams{ChainID: "local-1"})
				So(errors.ErrNetwork.Is(err), ShouldBeTrue)
				So(reg.State().Connectors["local-1"], ShouldEqual, metamask.UID())
			})
		})

		Convey("A rejected connect reverts to disconnected", func() {
			metamask.connectErr = errors.Wrap(errors.ErrUserRejected, "nope")
			err := reg.Connect(ctx, metamask, "local-1", "alice")
			So(errors.ErrUserRejected.Is(err), ShouldBeTrue)
			So(reg.State().Status, ShouldEqual, connect.StatusDisconnected)
			So(rec.Statuses(), ShouldResemble, []connect.Status{connect.StatusConnecting, connect.StatusDisconnected})
		})

		Convey("Disconnect selectors are validated", func() {
			err := reg.Disconnect(ctx, connect.DisconnectParams{})
			So(errors.ErrInvalidSelector.Is(err), ShouldBeTrue)

			err = reg.Disconnect(ctx, connect.DisconnectParams{ChainID: "local-1", ConnectorUID: metamask.UID()})
			So(errors.ErrInvalidSelector.Is(err), ShouldBeTrue)

			err = reg.Disconnect(ctx, connect.DisconnectParams{ChainID: "local-1"})
			So(errors.ErrNoConnectorForChain.Is(err), ShouldBeTrue)

			err = reg.Disconnect(ctx, connect.DisconnectParams{ConnectorUID: "unknown"})
			So(err, ShouldBeNil)
			So(metamask.Disconnects(), ShouldEqual, 0)
		})
	})
}

func TestReconnectRestoresSession(t *testing.T) {
	ctx := context.Background()
	storage := connect.NewMemStorage()

	first := newMock("metamask", addr(1))
	reg := connect.NewRegistry([]connect.Connector{first}, connect.WithStorage(storage))
	require.NoError(t, reg.Connect(ctx, first, "local-1", "alice"))

	// A new process registers new connector instances of the same backends.
	metamask := newMock("metamask")
	broken := newMock("keplr")
	broken.connectErr = errors.Wrap(errors.ErrUserRejected, "locked")
	sess, err := storage.Load()
	require.NoError(t, err)
	sess.Connections = append(sess.Connections,
		connect.SessionConnection{ChainID: "osmo-1", ConnectorID: "keplr", Username: "bob", Accounts: []grug.Address{addr(2)}},
		connect.SessionConnection{ChainID: "juno-1", ConnectorID: "leap", Username: "carl"},
	)
	require.NoError(t, storage.Save(sess))

	restored := connect.NewRegistry([]connect.Connector{metamask, broken}, connect.WithStorage(storage))
	rec := &recorder{}
	restored.Subscribe(rec.observe)
	require.NoError(t, restored.Reconnect(ctx))

	state := restored.State()
	assert.Equal(t, connect.StatusConnected, state.Status)
	require.Len(t, state.Connections, 1)
	c, ok := state.Connection("local-1")
	require.True(t, ok)
	assert.Equal(t, metamask.UID(), c.Connector.UID())
	assert.Equal(t, "alice", c.Username)
	// The connector returned no accounts, the persisted ones are kept.
	assert.Equal(t, []grug.Address{addr(1)}, c.Accounts)
	assert.NoError(t, state.Validate())

	assert.Equal(t, []connect.ConnectParams{{ChainID: "local-1", Username: "alice"}}, metamask.Connects())
	assert.Len(t, broken.Connects(), 1)

	statuses := rec.Statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, connect.StatusReconnecting, statuses[0])
	assert.Equal(t, connect.StatusConnected, statuses[len(statuses)-1])

	// Failed connections are not persisted again.
	sess, err = storage.Load()
	require.NoError(t, err)
	require.Len(t, sess.Connections, 1)
	assert.Equal(t, "metamask", sess.Connections[0].ConnectorID)
}

func TestFailedReconnectDropsLiveConnection(t *testing.T) {
	ctx := context.Background()
	storage := connect.NewMemStorage()
	metamask := newMock("metamask", addr(1))
	reg := connect.NewRegistry([]connect.Connector{metamask}, connect.WithStorage(storage))
	require.NoError(t, reg.Connect(ctx, metamask, "local-1", "alice"))

	metamask.mu.Lock()
	metamask.connectErr = errors.Wrap(errors.ErrUserRejected, "locked")
	metamask.mu.Unlock()

	rec := &recorder{}
	reg.Subscribe(rec.observe)
	require.NoError(t, reg.Reconnect(ctx))

	state := reg.State()
	assert.Equal(t, connect.StatusDisconnected, state.Status)
	assert.Empty(t, state.Connections)
	assert.Empty(t, state.Connectors)
	assert.NoError(t, state.Validate())

	// Attempts publish while reconnecting, only the last snapshot settles.
	assert.Equal(t, []connect.Status{
		connect.StatusReconnecting,
		connect.StatusReconnecting,
		connect.StatusDisconnected,
	}, rec.Statuses())

	// The rebuilt set never contains the stale connection.
	rec.mu.Lock()
	for _, s := range rec.states {
		assert.Empty(t, s.Connections)
	}
	rec.mu.Unlock()

	sess, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestReconnectWithoutSession(t *testing.T) {
	reg := connect.NewRegistry(nil)
	require.NoError(t, reg.Reconnect(context.Background()))
	assert.Equal(t, connect.StatusDisconnected, reg.State().Status)
}

func TestReconnectIsSingleFlight(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	ctx := context.Background()
	storage := connect.NewMemStorage()
	require.NoError(t, storage.Save(&connect.Session{Connections: []connect.SessionConnection{
		{ChainID: "local-1", ConnectorID: "metamask", Username: "alice", Accounts: []grug.Address{addr(1)}},
	}}))

	metamask := newMock("metamask")
	metamask.gate = make(chan struct{})
	reg := connect.NewRegistry([]connect.Connector{metamask}, connect.WithStorage(storage))

	done := make(chan error)
	go func() { done <- reg.Reconnect(ctx) }()

	// Wait until the first reconnect is blocked in the connector.
	grugassert.Eventually(t, time.Second, func() bool { return len(metamask.Connects()) == 1 })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.Reconnect(ctx))
		}()
	}
	wg.Wait()
	assert.Len(t, metamask.Connects(), 1)
	assert.Equal(t, connect.StatusReconnecting, reg.State().Status)

	close(metamask.gate)
	require.NoError(t, <-done)
	assert.Equal(t, connect.StatusConnected, reg.State().Status)

	// The guard is released.
	require.NoError(t, reg.Reconnect(ctx))
	assert.Len(t, metamask.Connects(), 2)
}

func TestConcurrentConnectKeepsInvariants(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	ctx := context.Background()
	connectors := []connect.Connector{newMock("a", addr(1)), newMock("b", addr(2)), newMock("c", addr(3))}
	reg := connect.NewRegistry(connectors)

	var (
		mu       sync.Mutex
		problems []error
	)
	reg.Subscribe(func(s connect.State) {
		if err := s.Validate(); err != nil {
			mu.Lock()
			problems = append(problems, err)
			mu.Unlock()
		}
	})

	chains := []string{"local-1", "local-2"}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := connectors[i%len(connectors)]
			chain := chains[i%len(chains)]
			if i%4 == 3 {
				_ = reg.Disconnect(ctx, connect.DisconnectParams{ConnectorUID: c.UID()})
				return
			}
			assert.NoError(t, reg.Connect(ctx, c, chain, "alice"))
		}(i)
	}
	wg.Wait()

	assert.Empty(t, problems)
	assert.NoError(t, reg.State().Validate())
}

func TestUnsubscribe(t *testing.T) {
	reg := connect.NewRegistry(nil)
	rec := &recorder{}
	unsubscribe := reg.Subscribe(rec.observe)
	m := newMock("metamask", addr(1))
	require.NoError(t, reg.Connect(context.Background(), m, "local-1", ""))
	unsubscribe()
	unsubscribe()
	require.NoError(t, reg.Disconnect(context.Background(), connect.DisconnectParams{ChainID: "local-1"}))
	assert.Len(t, rec.Statuses(), 2)
}
