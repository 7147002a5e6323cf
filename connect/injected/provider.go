package injected

import (
	"context"
	"fmt"

	"github.com/left-curve/grug-go/errors"
)

// UserRejectedCode is the provider error code of a request the user
// declined.
const UserRejectedCode = 4001

// Provider is a wallet injected into the host environment. It answers JSON
// RPC style requests.
type Provider interface {
	// Request calls method with params and decodes the answer into result.
	// A failure reported by the wallet is a *ProviderError.
	Request(ctx context.Context, method string, params, result interface{}) error
}

// ProviderError is an error reported by the wallet itself.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Host is the environment wallets inject themselves into.
type Host interface {
	Provider(name string) (Provider, bool)
}

// HostMap is a Host holding providers by name.
type HostMap map[string]Provider

func (h HostMap) Provider(name string) (Provider, bool) {
	p, ok := h[name]
	return p, ok && p != nil
}

// Lookup finds the provider of a connector in the host.
type Lookup func(Host) (Provider, error)

// ByName looks up the provider registered under name.
func ByName(name string) Lookup {
	return func(h Host) (Provider, error) {
		if h == nil {
			return nil, errors.Wrap(errors.ErrNotFound, "no host")
		}
		p, ok := h.Provider(name)
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "provider %q", name)
		}
		return p, nil
	}
}

// request calls the provider and translates a rejected request into
// errors.ErrUserRejected. Other provider errors become ErrUnauthorized.
func request(ctx context.Context, p Provider, method string, params, result interface{}) error {
	err := p.Request(ctx, method, params, result)
	if err == nil {
		return nil
	}
	if perr, ok := err.(*ProviderError); ok {
		if perr.Code == UserRejectedCode {
			return errors.Wrapf(errors.ErrUserRejected, "%s: %s", method, perr.Message)
		}
		return errors.Wrapf(errors.ErrUnauthorized, "%s: %s", method, perr)
	}
	return errors.Wrap(err, method)
}
