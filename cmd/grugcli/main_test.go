package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/grugtest"
)

// run executes the command line against the chain and returns the
// standard output.
func run(t *testing.T, chain *grugtest.Chain, args ...string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	a := newApp(&out, &stderr)
	a.dial = func(string) client.Transport { return chain }
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeKey stores the key in the format read by --key.
func writeKey(t *testing.T, key *crypto.Secp256k1Key) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grug.priv.key")
	require.NoError(t, ioutil.WriteFile(path, []byte(hex.EncodeToString(key.Bytes())+"\n"), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, grug.Version()+"\n", out)
}

func TestDeriveAddress(t *testing.T) {
	deployer := make(grug.Address, grug.AddressLength)
	deployer[0] = 0x42
	codeHash := grug.CodeHashOf([]byte("code"))

	out, err := run(t, nil, "derive-address",
		"--deployer", deployer.String(),
		"--code-hash", hex.EncodeToString(codeHash),
		"--salt", "alice")
	require.NoError(t, err)
	assert.Equal(t, grug.DeriveAddress(deployer, codeHash, []byte("alice")).String(), strings.TrimSpace(out))

	out, err = run(t, nil, "derive-address",
		"--deployer", deployer.String(),
		"--code-hash", hex.EncodeToString(codeHash),
		"--salt-hex", hex.EncodeToString([]byte("alice")))
	require.NoError(t, err)
	assert.Equal(t, grug.DeriveAddress(deployer, codeHash, []byte("alice")).String(), strings.TrimSpace(out))

	_, err = run(t, nil, "derive-address", "--deployer", deployer.String(), "--code-hash", "zz")
	assert.Error(t, err)
}

func TestDeriveSalt(t *testing.T) {
	key, err := crypto.GenSecp256r1()
	require.NoError(t, err)
	out, err := run(t, nil, "derive-salt",
		"--key-type", "secp256r1",
		"--public-key", hex.EncodeToString(key.PublicKey()),
		"--serial", "3")
	require.NoError(t, err)
	want, err := grug.DeriveSalt(grug.KeyTypeSecp256r1, key.PublicKey(), 3)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want), strings.TrimSpace(out))

	_, err = run(t, nil, "derive-salt", "--key-type", "ed25519", "--public-key", "00")
	assert.Error(t, err)
}

func TestKeyaddrMatchesRegisteredAccount(t *testing.T) {
	chain := grugtest.NewChain("local-1")
	seed := bytes.Repeat([]byte{7}, 32)
	key, err := crypto.DeriveSecp256k1(seed, 2)
	require.NoError(t, err)
	registered, err := chain.RegisterSigner(key)
	require.NoError(t, err)

	setenv(t, "GRUG_ACCOUNT_FACTORY", chain.Factory().String())
	setenv(t, "GRUG_ACCOUNT_CODE_HASH", hex.EncodeToString(chain.AccountCodeHash()))

	out, err := run(t, chain, "keyaddr", "--seed", hex.EncodeToString(seed), "--index", "2")
	require.NoError(t, err)

	var got keyaddrOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "m/44'/60'/0'/0/2", got.Path)
	assert.Equal(t, grug.HexBinary(key.PublicKey()), got.PublicKey)
	assert.Equal(t, registered, got.Address)
}

func TestQuery(t *testing.T) {
	chain := grugtest.NewChain("local-1")
	key, err := crypto.GenSecp256k1()
	require.NoError(t, err)
	alice, err := chain.RegisterSigner(key)
	require.NoError(t, err)
	coins, err := grug.ParseCoins("10uatom,3uosmo")
	require.NoError(t, err)
	require.NoError(t, chain.Mint(alice, coins))

	out, err := run(t, chain, "query", "info")
	require.NoError(t, err)
	var info grug.InfoResponse
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "local-1", info.ChainID)

	out, err = run(t, chain, "query", "balance", alice.String(), "uatom")
	require.NoError(t, err)
	var bal grug.Coin
	require.NoError(t, json.Unmarshal([]byte(out), &bal))
	assert.Equal(t, "10", bal.Amount.String())

	out, err = run(t, chain, "query", "balances", alice.String(), "--limit", "1")
	require.NoError(t, err)
	var page grug.Coins
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "10uatom", page.String())

	out, err = run(t, chain, "query", "supply", "uosmo")
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": "3"`)

	out, err = run(t, chain, "query", "account", alice.String())
	require.NoError(t, err)
	var acc grug.AccountResponse
	require.NoError(t, json.Unmarshal([]byte(out), &acc))

	_, err = run(t, chain, "query", "balance", "0x1234", "uatom")
	assert.Error(t, err)
}

func TestTransfer(t *testing.T) {
	chain := grugtest.NewChain("local-1")
	key, err := crypto.GenSecp256k1()
	require.NoError(t, err)
	alice, err := chain.RegisterSigner(key)
	require.NoError(t, err)
	funds, err := grug.ParseCoins("10uatom")
	require.NoError(t, err)
	require.NoError(t, chain.Mint(alice, funds))
	bobKey, err := crypto.GenSecp256k1()
	require.NoError(t, err)
	bob, err := chain.RegisterSigner(bobKey)
	require.NoError(t, err)

	keyPath := writeKey(t, key)
	out, err := run(t, chain, "transfer", bob.String(), "4uatom",
		"--key", keyPath, "--sender", alice.String(), "--chain-id", "local-1", "--wait")
	require.NoError(t, err)

	var res txOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.Hash)
	assert.Equal(t, chain.Height(), res.Height)

	out, err = run(t, chain, "query", "balance", bob.String(), "uatom")
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": "4"`)

	// Signing with the same sequence again is rejected by the chain.
	_, err = run(t, chain, "transfer", bob.String(), "1uatom",
		"--key", keyPath, "--sender", alice.String(), "--sequence", "0")
	assert.Error(t, err)

	_, err = run(t, chain, "transfer", bob.String(), "1uatom", "--key", keyPath)
	assert.Error(t, err, "sender is required")
}

func TestStoreCodeAndInstantiate(t *testing.T) {
	chain := grugtest.NewChain("local-1")
	key, err := crypto.GenSecp256k1()
	require.NoError(t, err)
	alice, err := chain.RegisterSigner(key)
	require.NoError(t, err)
	keyPath := writeKey(t, key)

	code := filepath.Join(t.TempDir(), "counter.wasm")
	require.NoError(t, ioutil.WriteFile(code, []byte("\x00asm counter"), 0o600))

	out, err := run(t, chain, "store-code", code, "--key", keyPath, "--sender", alice.String())
	require.NoError(t, err)
	var stored txOutput
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, grug.CodeHashOf([]byte("\x00asm counter")), stored.CodeHash)

	out, err = run(t, chain, "instantiate", hex.EncodeToString(stored.CodeHash), `{"count":0}`,
		"--salt", "counter", "--admin", "self", "--key", keyPath, "--sender", alice.String())
	require.NoError(t, err)
	var inst txOutput
	require.NoError(t, json.Unmarshal([]byte(out), &inst))
	assert.Equal(t, grug.DeriveAddress(alice, stored.CodeHash, []byte("counter")), inst.Address)

	var executed []string
	chain.HandleExecute(inst.Address, func(sender grug.Address, msg []byte, funds grug.Coins) error {
		executed = append(executed, string(msg))
		return nil
	})
	_, err = run(t, chain, "execute", inst.Address.String(), `{"increment":{}}`,
		"--key", keyPath, "--sender", alice.String())
	require.NoError(t, err)
	assert.Equal(t, []string{`{"increment":{}}`}, executed)

	_, err = run(t, chain, "execute", inst.Address.String(), `not json`,
		"--key", keyPath, "--sender", alice.String())
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	out, err := run(t, nil, "session", "show", "--session", path)
	require.NoError(t, err)
	assert.Contains(t, out, "connections")

	_, err = run(t, nil, "session", "clear", "--session", path)
	require.NoError(t, err)

	_, err = run(t, nil, "session", "show")
	assert.Error(t, err, "no database configured")
}

func setenv(t *testing.T, name, value string) {
	t.Helper()
	prev, ok := os.LookupEnv(name)
	require.NoError(t, os.Setenv(name, value))
	t.Cleanup(func() {
		if ok {
			os.Setenv(name, prev)
		} else {
			os.Unsetenv(name)
		}
	})
}

func TestKeyaddrFromMnemonic(t *testing.T) {
	const abandon = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	seed, err := crypto.SeedFromMnemonic(abandon, "")
	require.NoError(t, err)

	fromSeed, err := run(t, nil, "keyaddr", "--seed", hex.EncodeToString(seed))
	require.NoError(t, err)
	fromMnemonic, err := run(t, nil, "keyaddr", "--mnemonic", abandon)
	require.NoError(t, err)
	assert.Equal(t, fromSeed, fromMnemonic)

	_, err = run(t, nil, "keyaddr", "--mnemonic", abandon, "--seed", "00")
	assert.Error(t, err)
}
