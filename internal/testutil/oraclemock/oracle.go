package oraclemock

import (
	"context"
	"errors"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

var errUnimplemented = errors.New("oraclemock: GetAssetFn not set")

// Oracle is a function-backed valuation oracle double.
type Oracle struct {
	GetAssetFn func(ctx context.Context, assetID string) (*asset.Collateral, error)
	Calls      int
}

func (m *Oracle) GetAsset(ctx context.Context, assetID string) (*asset.Collateral, error) {
	m.Calls++
	if m.GetAssetFn != nil {
		return m.GetAssetFn(ctx, assetID)
	}
	return nil, errUnimplemented
}

// Fixed returns an oracle that always serves the same snapshot.
func Fixed(a asset.Collateral) *Oracle {
	return &Oracle{GetAssetFn: func(ctx context.Context, assetID string) (*asset.Collateral, error) {
		cp := a
		cp.AssetID = assetID
		return &cp, nil
	}}
}
