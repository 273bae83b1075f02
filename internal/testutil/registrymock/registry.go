package registrymock

import "context"

// Registry records ownership-transfer requests; TransferFn overrides the
// default success.
type Registry struct {
	TransferFn func(ctx context.Context, assetID, newOwner string) error
	Calls      []Call
}

type Call struct{ AssetID, NewOwner string }

func (m *Registry) Transfer(ctx context.Context, assetID, newOwner string) error {
	m.Calls = append(m.Calls, Call{AssetID: assetID, NewOwner: newOwner})
	if m.TransferFn != nil {
		return m.TransferFn(ctx, assetID, newOwner)
	}
	return nil
}
