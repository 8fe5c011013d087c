package money

import (
	"fmt"
	"sync"
)

// Asset represents a currency with its arithmetic properties.
type Asset struct {
	Code     string // ISO 4217-style code (USD, EUR, JPY, ...)
	Decimals uint8  // Number of minor-unit decimal places (2 for USD, 0 for JPY)
	Metadata AssetMetadata
}

// AssetMetadata carries backend-specific identifiers for an asset.
type AssetMetadata struct {
	StripeCurrency string // Stripe currency code (lowercase: "usd", "eur")
}

var (
	assetRegistry = map[string]Asset{
		"USD": {Code: "USD", Decimals: 2, Metadata: AssetMetadata{StripeCurrency: "usd"}},
		"EUR": {Code: "EUR", Decimals: 2, Metadata: AssetMetadata{StripeCurrency: "eur"}},
		"GBP": {Code: "GBP", Decimals: 2, Metadata: AssetMetadata{StripeCurrency: "gbp"}},
		"JPY": {Code: "JPY", Decimals: 0, Metadata: AssetMetadata{StripeCurrency: "jpy"}},

		// Token assets: no Stripe currency mapping.
		"USDC": {Code: "USDC", Decimals: 6},
		"USDT": {Code: "USDT", Decimals: 6},
		"SOL":  {Code: "SOL", Decimals: 9},
	}
	assetRegistryMu sync.RWMutex
)

// GetAsset retrieves a currency from the registry.
func GetAsset(code string) (Asset, error) {
	assetRegistryMu.RLock()
	asset, ok := assetRegistry[code]
	assetRegistryMu.RUnlock()

	if !ok {
		return Asset{}, fmt.Errorf("money: unknown asset: %s", code)
	}
	return asset, nil
}

// MustGetAsset retrieves an asset and panics if not found (for tests/constants).
func MustGetAsset(code string) Asset {
	asset, err := GetAsset(code)
	if err != nil {
		panic(err)
	}
	return asset
}

// RegisterAsset adds a currency to the registry. Tenants onboarding a new
// operating currency call this once at startup from config.
func RegisterAsset(asset Asset) error {
	if asset.Code == "" {
		return fmt.Errorf("money: asset code required")
	}
	if asset.Decimals > 8 {
		return fmt.Errorf("money: decimals must be <= 8")
	}

	assetRegistryMu.Lock()
	assetRegistry[asset.Code] = asset
	assetRegistryMu.Unlock()

	return nil
}

// ListAssets returns all registered currencies.
func ListAssets() []Asset {
	assetRegistryMu.RLock()
	assets := make([]Asset, 0, len(assetRegistry))
	for _, asset := range assetRegistry {
		assets = append(assets, asset)
	}
	assetRegistryMu.RUnlock()

	return assets
}

// IsStripeCurrency reports whether the asset has a Stripe currency mapping.
func (a Asset) IsStripeCurrency() bool {
	return a.Metadata.StripeCurrency != ""
}

// GetStripeCurrency returns the Stripe currency code for this asset.
func (a Asset) GetStripeCurrency() (string, error) {
	if a.Metadata.StripeCurrency == "" {
		return "", fmt.Errorf("money: %s has no stripe currency mapping", a.Code)
	}
	return a.Metadata.StripeCurrency, nil
}
