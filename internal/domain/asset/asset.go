// Package asset models collateral as seen by the valuation oracle. The
// service never owns these records; it snapshots them at origination and
// re-fetches live copies at every risk decision point.
package asset

type Kind string

const (
	KindRealEstate  Kind = "RealEstate"
	KindVehicle     Kind = "Vehicle"
	KindArtwork     Kind = "Artwork"
	KindJewelry     Kind = "Jewelry"
	KindCollectible Kind = "Collectible"
	KindOther       Kind = "Other"
)

// Kinds is the closed set of supported collateral kinds.
var Kinds = []Kind{KindRealEstate, KindVehicle, KindArtwork, KindJewelry, KindCollectible, KindOther}

func (k Kind) Valid() bool {
	switch k {
	case KindRealEstate, KindVehicle, KindArtwork, KindJewelry, KindCollectible, KindOther:
		return true
	}
	return false
}

// Type is a tagged union: Label carries meaning only when Kind is Other.
type Type struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`
}

// SameKind compares by tag only. Other("boat") therefore matches
// Other("painting") — intentional, flagged for product review.
func (t Type) SameKind(o Type) bool { return t.Kind == o.Kind }

type PaymentMethod string

const (
	PayICP      PaymentMethod = "ICP"
	PayBitcoin  PaymentMethod = "Bitcoin"
	PayEthereum PaymentMethod = "Ethereum"
	PayUSDC     PaymentMethod = "USDC"
	PayUSDT     PaymentMethod = "USDT"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayICP, PayBitcoin, PayEthereum, PayUSDC, PayUSDT:
		return true
	}
	return false
}

// Collateral is the oracle's view of one asset: current owner, appraised
// value and how confident the verifier is in that appraisal.
type Collateral struct {
	AssetID           string  `json:"asset_id"`
	AssetType         Type    `json:"asset_type"`
	VerifiedValueUSD  float64 `json:"verified_value_usd"`
	VerificationScore float64 `json:"verification_score"`
	Owner             string  `json:"owner"`
	MetadataURI       string  `json:"metadata_uri"`
}
