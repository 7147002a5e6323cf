/*
Package config loads the settings shared by the command line tools.

Settings are read from a YAML file and can be overridden with GRUG_*
environment variables. Unset values keep their defaults:

	node: tcp://localhost:26657
	chain_id: ""
	session: ""
	log_level: info
	poll_interval: 500ms
*/
package config

import (
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/tendermint/tendermint/libs/log"
	"gopkg.in/yaml.v3"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/errors"
)

// Environment variables overriding file settings.
const (
	EnvNode            = "GRUG_NODE"
	EnvChainID         = "GRUG_CHAIN_ID"
	EnvSession         = "GRUG_SESSION"
	EnvLogLevel        = "GRUG_LOG_LEVEL"
	EnvPollInterval    = "GRUG_POLL_INTERVAL"
	EnvProofType       = "GRUG_PROOF_TYPE"
	EnvFactory         = "GRUG_ACCOUNT_FACTORY"
	EnvAccountCodeHash = "GRUG_ACCOUNT_CODE_HASH"
)

// DefaultNode is the RPC address of a local node.
const DefaultNode = "tcp://localhost:26657"

type Config struct {
	// Node is the tendermint RPC address.
	Node string `yaml:"node"`
	// ChainID is resolved from the node when empty.
	ChainID string `yaml:"chain_id"`
	// Session is the leveldb directory keeping wallet connections. It
	// must end with .db. Empty keeps the session in memory.
	Session  string `yaml:"session"`
	LogLevel string `yaml:"log_level"`
	// PollInterval is the delay between two block height checks.
	PollInterval time.Duration `yaml:"poll_interval"`
	ProofType    string        `yaml:"proof_type"`

	// Factory and AccountCodeHash describe the account factory of the
	// chain. Both are required to derive account addresses offline.
	Factory         string `yaml:"account_factory"`
	AccountCodeHash string `yaml:"account_code_hash"`
}

func DefaultConfig() Config {
	return Config{
		Node:         DefaultNode,
		LogLevel:     "info",
		PollInterval: client.DefaultPollInterval,
		ProofType:    grug.DefaultProofType,
	}
}

// Load reads the file at path over the defaults, then applies the
// environment. An empty path only applies the environment.
func Load(path string) (*Config, error) {
	conf := DefaultConfig()
	if path != "" {
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "read config: %s", err)
		}
		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "parse %s: %s", path, err)
		}
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &conf, nil
}

// ApplyEnv overrides the settings present in the environment, even when
// set to an empty value.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvNode:            &c.Node,
		EnvChainID:         &c.ChainID,
		EnvSession:         &c.Session,
		EnvLogLevel:        &c.LogLevel,
		EnvProofType:       &c.ProofType,
		EnvFactory:         &c.Factory,
		EnvAccountCodeHash: &c.AccountCodeHash,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPollInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "%s: %s", EnvPollInterval, err)
		}
		c.PollInterval = d
	}
	return nil
}

// Validate returns all problems of the configuration at once.
func (c Config) Validate() error {
	var errs error
	if c.Node == "" {
		errs = errors.AppendField(errs, "Node", errors.ErrEmpty)
	}
	if c.Session != "" && !strings.HasSuffix(strings.TrimSuffix(c.Session, "/"), ".db") {
		errs = errors.AppendField(errs, "Session", errors.Wrapf(errors.ErrInvalidInput, "%q must end with .db", c.Session))
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		errs = errors.AppendField(errs, "LogLevel", errors.Wrap(errors.ErrInvalidInput, err.Error()))
	}
	if c.PollInterval <= 0 {
		errs = errors.AppendField(errs, "PollInterval", errors.Wrap(errors.ErrInvalidInput, "must be positive"))
	}
	if c.Factory != "" {
		if _, err := grug.ParseAddress(c.Factory); err != nil {
			errs = errors.AppendField(errs, "Factory", err)
		}
	}
	if c.AccountCodeHash != "" {
		if _, err := grug.ParseHash(c.AccountCodeHash); err != nil {
			errs = errors.AppendField(errs, "AccountCodeHash", err)
		}
	}
	return errs
}

// Logger returns a tendermint logger writing to w at the configured
// level.
func (c Config) Logger(w io.Writer) log.Logger {
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	lvl, err := log.AllowLevel(c.LogLevel)
	if err != nil {
		lvl = log.AllowInfo()
	}
	return log.NewFilter(logger, lvl)
}

// ClientOptions returns the client options matching the configuration.
func (c Config) ClientOptions(logger log.Logger) []client.Option {
	return []client.Option{
		client.WithLogger(logger),
		client.WithProofType(c.ProofType),
		client.WithPollInterval(c.PollInterval),
	}
}

// AccountFactory returns the factory address and account code hash. Both
// must be configured.
func (c Config) AccountFactory() (grug.Address, grug.Hash, error) {
	if c.Factory == "" || c.AccountCodeHash == "" {
		return nil, nil, errors.Wrap(errors.ErrEmpty, "account_factory and account_code_hash must be configured")
	}
	factory, err := grug.ParseAddress(c.Factory)
	if err != nil {
		return nil, nil, errors.Wrap(err, "account factory")
	}
	hash, err := grug.ParseHash(c.AccountCodeHash)
	if err != nil {
		return nil, nil, errors.Wrap(err, "account code hash")
	}
	return factory, hash, nil
}
