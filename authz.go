package paygate

import (
	"context"
	"fmt"

	"github.com/xraph/paygate/store"
	"github.com/xraph/paygate/types"
)

// Authorization is a two-step gate run at the top of every operation:
// the verifier proves the invoker controls the claimed address, then the
// role check compares that address against stored state. Role membership is
// never cached; a removed merchant is rejected on their very next call.

// config loads the gateway configuration, mapping absence to
// ErrNotInitialized.
func (g *Gateway) config(ctx context.Context) (*store.Config, error) {
	cfg, err := g.store.GetConfig(ctx)
	if err != nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

// requireOwner verifies the invoker's identity and checks they are the
// configured owner.
func (g *Gateway) requireOwner(ctx context.Context, invoker types.Address) (*store.Config, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !cfg.Owner.Equal(invoker) {
		return nil, ErrNotOwner
	}
	return cfg, nil
}

// requireMerchant verifies the invoker's identity and checks they are a
// registered merchant.
func (g *Gateway) requireMerchant(ctx context.Context, invoker types.Address) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	registered, err := g.store.IsMerchant(ctx, invoker)
	if err != nil {
		return err
	}
	if !registered {
		return ErrNotMerchant
	}
	return nil
}
