package connect

import (
	"path/filepath"
	"sort"
	"strings"

	amino "github.com/tendermint/go-amino"
	dbm "github.com/tendermint/tendermint/libs/db"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Session is the persisted form of the registry connections. It holds just
// enough to call Reconnect after a restart.
type Session struct {
	Connections []SessionConnection `json:"connections"`
}

// SessionConnection is a persisted connection. Connectors are referenced by
// their stable ID.
type SessionConnection struct {
	ChainID     string         `json:"chain_id"`
	ConnectorID string         `json:"connector_id"`
	Username    string         `json:"username"`
	Accounts    []grug.Address `json:"accounts"`
}

// NewSession returns the session describing the given state. Connections
// are ordered by chain id.
func NewSession(s State) *Session {
	chains := make([]string, 0, len(s.Connectors))
	for chain := range s.Connectors {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	sess := &Session{}
	for _, chain := range chains {
		c, ok := s.Connection(chain)
		if !ok {
			continue
		}
		sess.Connections = append(sess.Connections, SessionConnection{
			ChainID:     c.ChainID,
			ConnectorID: c.Connector.ID(),
			Username:    c.Username,
			Accounts:    c.Accounts,
		})
	}
	return sess
}

// Storage persists the session of a registry.
type Storage interface {
	// Load returns the last saved session or nil if none was saved.
	Load() (*Session, error)
	Save(*Session) error
}

var cdc = amino.NewCodec()

// DefaultSessionKey is the database key of the session.
var DefaultSessionKey = []byte("grug:connect:session")

// DBStorage keeps the session in a tendermint database, amino encoded.
type DBStorage struct {
	db  dbm.DB
	key []byte
}

var _ Storage = (*DBStorage)(nil)

// NewDBStorage stores the session under DefaultSessionKey of db.
func NewDBStorage(db dbm.DB) *DBStorage {
	return &DBStorage{db: db, key: DefaultSessionKey}
}

// NewMemStorage returns a storage that is lost with the process.
func NewMemStorage() *DBStorage {
	return NewDBStorage(dbm.NewMemDB())
}

// OpenDBStorage opens (or creates) a leveldb database. The path must end
// with .db, like session.db.
func OpenDBStorage(path string) (*DBStorage, error) {
	path = strings.TrimSuffix(path, "/")
	if !strings.HasSuffix(path, ".db") {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "database directory must end with .db, got %q", path)
	}
	dir, name := filepath.Split(strings.TrimSuffix(path, ".db"))
	if dir == "" {
		dir = "."
	}
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "open %s: %s", path, err)
	}
	return NewDBStorage(db), nil
}

// Load implements Storage.
func (s *DBStorage) Load() (*Session, error) {
	raw := s.db.Get(s.key)
	if raw == nil {
		return nil, nil
	}
	var sess Session
	if err := cdc.UnmarshalBinaryBare(raw, &sess); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "decode session: %s", err)
	}
	return &sess, nil
}

// Save implements Storage. An empty session removes the stored one.
func (s *DBStorage) Save(sess *Session) error {
	if sess == nil || len(sess.Connections) == 0 {
		s.db.DeleteSync(s.key)
		return nil
	}
	raw, err := cdc.MarshalBinaryBare(sess)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "encode session: %s", err)
	}
	s.db.SetSync(s.key, raw)
	return nil
}

// Close releases the database.
func (s *DBStorage) Close() {
	s.db.Close()
}

// MarshalSessionJSON renders a session for humans.
func MarshalSessionJSON(sess *Session) ([]byte, error) {
	return cdc.MarshalJSONIndent(sess, "", "  ")
}
