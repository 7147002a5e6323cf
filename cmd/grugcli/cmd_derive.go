package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/crypto"
)

func decodeHex(name, s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded: %s", name, err)
	}
	return raw, nil
}

// saltFlags registers --salt and --salt-hex and returns their reader.
func saltFlags(c *cobra.Command) func() ([]byte, error) {
	var salt, saltHex string
	c.Flags().StringVar(&salt, "salt", "", "Salt given as UTF-8 text.")
	c.Flags().StringVar(&saltHex, "salt-hex", "", "Salt given as hex, exclusive with --salt.")
	return func() ([]byte, error) {
		if salt != "" && saltHex != "" {
			return nil, fmt.Errorf("use either --salt or --salt-hex")
		}
		if saltHex != "" {
			return decodeHex("salt", saltHex)
		}
		return []byte(salt), nil
	}
}

func newDeriveAddressCmd(a *app) *cobra.Command {
	var deployer, codeHash string
	c := &cobra.Command{
		Use:   "derive-address",
		Short: "Print the address a contract is instantiated at",
		Args:  cobra.NoArgs,
	}
	c.Flags().StringVar(&deployer, "deployer", "", "Address of the instantiating account (required).")
	c.Flags().StringVar(&codeHash, "code-hash", "", "Hex encoded hash of the contract code (required).")
	salt := saltFlags(c)
	c.RunE = func(cmd *cobra.Command, args []string) error {
		hash, err := grug.ParseHash(strings.TrimPrefix(codeHash, "0x"))
		if err != nil {
			return err
		}
		s, err := salt()
		if err != nil {
			return err
		}
		addr, err := grug.DeriveAddressFromString(deployer, hash, s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, addr)
		return err
	}
	return c
}

func newDeriveSaltCmd(a *app) *cobra.Command {
	var (
		keyType string
		pubKey  string
		serial  uint32
	)
	c := &cobra.Command{
		Use:   "derive-salt",
		Short: "Print the salt the account factory uses for a public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kt, err := grug.ParseKeyType(keyType)
			if err != nil {
				return err
			}
			pk, err := decodeHex("public key", pubKey)
			if err != nil {
				return err
			}
			salt, err := grug.DeriveSalt(kt, pk, serial)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, hex.EncodeToString(salt))
			return err
		},
	}
	c.Flags().StringVar(&keyType, "key-type", string(grug.KeyTypeSecp256k1), "Key algorithm, secp256k1 or secp256r1.")
	c.Flags().StringVar(&pubKey, "public-key", "", "Hex encoded compressed public key (required).")
	c.Flags().Uint32Var(&serial, "serial", 0, "Account factory serial of the registration.")
	return c
}

type keyaddrOutput struct {
	Path      string         `json:"path"`
	KeyType   grug.KeyType   `json:"key_type"`
	PublicKey grug.HexBinary `json:"public_key"`
	Salt      grug.HexBinary `json:"salt"`
	Address   grug.Address   `json:"address,omitempty"`
}

func newKeyaddrCmd(a *app) *cobra.Command {
	var (
		seed       string
		mnemonic   string
		passphrase string
		index      uint32
		serial     uint32
	)
	c := &cobra.Command{
		Use:   "keyaddr",
		Short: "Derive an HD account key and print its public key, salt and address",
		Long: `Derive the key at m/44'/60'/0'/0/INDEX of a BIP-39 seed, given either
directly or as a mnemonic sentence.

The address is printed when account_factory and account_code_hash are
configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			switch {
			case seed != "" && mnemonic != "":
				return fmt.Errorf("use either --seed or --mnemonic")
			case mnemonic != "":
				raw, err = crypto.SeedFromMnemonic(mnemonic, passphrase)
			default:
				raw, err = decodeHex("seed", seed)
			}
			if err != nil {
				return err
			}
			key, err := crypto.DeriveSecp256k1(raw, index)
			if err != nil {
				return err
			}
			salt, err := crypto.AccountSalt(key, serial)
			if err != nil {
				return err
			}
			out := keyaddrOutput{
				Path:      crypto.HDPath(index),
				KeyType:   key.KeyType(),
				PublicKey: key.PublicKey(),
				Salt:      salt,
			}
			if factory, codeHash, err := a.conf.AccountFactory(); err == nil {
				out.Address = grug.DeriveAddress(factory, codeHash, salt)
			}
			return a.printJSON(out)
		},
	}
	c.Flags().StringVar(&seed, "seed", env("GRUG_SEED", ""), "Hex encoded BIP-39 seed. You can use GRUG_SEED environment variable to set it.")
	c.Flags().StringVar(&mnemonic, "mnemonic", env("GRUG_MNEMONIC", ""), "BIP-39 mnemonic sentence. You can use GRUG_MNEMONIC environment variable to set it.")
	c.Flags().StringVar(&passphrase, "passphrase", "", "Optional BIP-39 passphrase of the mnemonic.")
	c.Flags().Uint32Var(&index, "index", 0, "Index of the account key.")
	c.Flags().Uint32Var(&serial, "serial", 0, "Account factory serial of the registration.")
	return c
}
