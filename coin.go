package grug

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/left-curve/grug-go/errors"
)

// IsDenom is the RegExp to ensure valid denominations. A denom is made of
// alphanumeric segments that can be separated with '/' (factory denoms).
var IsDenom = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(/[a-zA-Z0-9._:-]+)*$`).MatchString

// Uint is a non-negative integer of arbitrary precision. Amounts are
// transported as decimal strings so that no precision is lost on the way.
//
// The zero value is a valid zero. Values are immutable, every operation
// returns a new Uint.
type Uint struct {
	i *big.Int
}

// NewUint returns an Uint of the given value.
func NewUint(n uint64) Uint {
	return Uint{i: new(big.Int).SetUint64(n)}
}

// ParseUint decodes a decimal string.
func ParseUint(s string) (Uint, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint{}, errors.Wrapf(errors.ErrInvalidAmount, "not a decimal integer: %q", s)
	}
	if i.Sign() < 0 {
		return Uint{}, errors.Wrapf(errors.ErrInvalidAmount, "negative: %q", s)
	}
	return Uint{i: i}, nil
}

// MustParseUint is like ParseUint, but panics instead of returning errors.
// Only use with constant input.
func MustParseUint(s string) Uint {
	u, err := ParseUint(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u Uint) big() *big.Int {
	if u.i == nil {
		return new(big.Int)
	}
	return u.i
}

// BigInt returns a copy of the value as a big.Int.
func (u Uint) BigInt() *big.Int {
	return new(big.Int).Set(u.big())
}

// IsZero returns true if the value is zero.
func (u Uint) IsZero() bool {
	return u.big().Sign() == 0
}

// Cmp compares two values and returns -1, 0 or +1.
func (u Uint) Cmp(o Uint) int {
	return u.big().Cmp(o.big())
}

// Add returns u + o.
func (u Uint) Add(o Uint) Uint {
	return Uint{i: new(big.Int).Add(u.big(), o.big())}
}

// Sub returns u - o, or ErrInvalidAmount if the result would be negative.
func (u Uint) Sub(o Uint) (Uint, error) {
	if u.Cmp(o) < 0 {
		return Uint{}, errors.Wrapf(errors.ErrInvalidAmount, "subtract %s from %s", o, u)
	}
	return Uint{i: new(big.Int).Sub(u.big(), o.big())}, nil
}

// String returns the decimal representation.
func (u Uint) String() string {
	return u.big().String()
}

// MarshalJSON encodes the value as a decimal string.
func (u Uint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a decimal string.
func (u *Uint) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be a string")
	}
	v, err := ParseUint(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string `json:"denom"`
	Amount Uint   `json:"amount"`
}

// NewCoin creates a new coin object
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: NewUint(amount)}
}

// Validate returns an error if the coin is not of a valid denom or carries
// no value.
func (c Coin) Validate() error {
	var errs error
	if !IsDenom(c.Denom) {
		errs = errors.AppendField(errs, "Denom", errors.Wrapf(errors.ErrInvalidInput, "%q", c.Denom))
	}
	if c.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
	}
	return errs
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Denom == o.Denom && c.Amount.Cmp(o.Amount) == 0
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// Coins represents a set of coins. Normalized coins are sorted by denom,
// hold each denom at most once and carry no zero amounts. The chain only
// accepts normalized coins.
type Coins []Coin

// NewCoins creates a normalized Coins containing all given coins, combining
// duplicates and dropping zero values.
func NewCoins(cs ...Coin) (Coins, error) {
	var coins Coins
	for _, c := range cs {
		coins = coins.Add(c)
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}

// Add returns a new set increased by c.
func (cs Coins) Add(c Coin) Coins {
	if c.Amount.IsZero() {
		return cs
	}
	res := make(Coins, 0, len(cs)+1)
	added := false
	for _, have := range cs {
		switch {
		case have.Denom == c.Denom:
			res = append(res, Coin{Denom: c.Denom, Amount: have.Amount.Add(c.Amount)})
			added = true
		case !added && c.Denom < have.Denom:
			res = append(res, c, have)
			added = true
		default:
			res = append(res, have)
		}
	}
	if !added {
		res = append(res, c)
	}
	return res
}

// AmountOf returns the amount held of the given denom.
func (cs Coins) AmountOf(denom string) Uint {
	for _, c := range cs {
		if c.Denom == denom {
			return c.Amount
		}
	}
	return Uint{}
}

// Validate requires that all coins are in normalized form and are valid.
func (cs Coins) Validate() error {
	var errs error
	for i, c := range cs {
		errs = errors.AppendField(errs, fmt.Sprintf("Coins.%d", i), c.Validate())
	}
	if errs != nil {
		return errs
	}
	sorted := sort.SliceIsSorted(cs, func(i, j int) bool { return cs[i].Denom < cs[j].Denom })
	for i := 1; sorted && i < len(cs); i++ {
		if cs[i].Denom == cs[i-1].Denom {
			sorted = false
		}
	}
	if !sorted {
		return errors.Wrap(errors.ErrInvalidInput, "coins must be sorted by denom and unique")
	}
	return nil
}

// MarshalJSON always writes a list, never null.
func (cs Coins) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Coin(cs))
}

// UnmarshalJSON decodes a list of coins. An empty list decodes to nil.
func (cs *Coins) UnmarshalJSON(raw []byte) error {
	var list []Coin
	if err := json.Unmarshal(raw, &list); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "coins: %s", err)
	}
	if len(list) == 0 {
		*cs = nil
		return nil
	}
	*cs = list
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z].*)$`)

// ParseCoin parses the human format produced by Coin.String, like 10uatom.
func ParseCoin(s string) (Coin, error) {
	m := coinPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInvalidInput, "malformed coin %q", s)
	}
	amount, err := ParseUint(m[1])
	if err != nil {
		return Coin{}, err
	}
	c := Coin{Denom: m[2], Amount: amount}
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

// ParseCoins parses a comma separated list of coins into normalized Coins.
// An empty string is an empty set.
func ParseCoins(s string) (Coins, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var cs []Coin
	for _, part := range strings.Split(s, ",") {
		c, err := ParseCoin(part)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return NewCoins(cs...)
}
