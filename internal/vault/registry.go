package vault

// assetRegistry tracks which asset identifiers are eligible for deposit
// and withdrawal. The native asset is implicitly supported and can never
// be re-registered. Registered assets are never removed, so deposited
// balances cannot be orphaned.
type assetRegistry struct {
	supported map[string]struct{}
}

func newAssetRegistry() *assetRegistry {
	return &assetRegistry{supported: make(map[string]struct{})}
}

func (r *assetRegistry) isSupported(asset string) bool {
	if asset == NativeAsset {
		return true
	}
	_, ok := r.supported[asset]
	return ok
}

func (r *assetRegistry) add(asset string) {
	r.supported[asset] = struct{}{}
}
