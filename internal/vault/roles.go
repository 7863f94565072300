package vault

// Capability is an administrative permission an identity may hold.
// Capabilities are additive only; there is no revoke path.
type Capability string

const (
	CapabilityConfig    Capability = "config"
	CapabilityOracle    Capability = "oracle"
	CapabilityEmergency Capability = "emergency"
)

func (c Capability) String() string {
	return string(c)
}

func (c Capability) valid() bool {
	switch c {
	case CapabilityConfig, CapabilityOracle, CapabilityEmergency:
		return true
	}
	return false
}

type roleRegistry struct {
	holders map[Capability]map[string]struct{}
}

// newRoleRegistry bootstraps the registry with the operator holding all
// three capabilities.
func newRoleRegistry(operator string) *roleRegistry {
	r := &roleRegistry{
		holders: map[Capability]map[string]struct{}{
			CapabilityConfig:    {},
			CapabilityOracle:    {},
			CapabilityEmergency: {},
		},
	}
	for capability := range r.holders {
		r.holders[capability][operator] = struct{}{}
	}
	return r
}

func (r *roleRegistry) has(capability Capability, identity string) bool {
	_, ok := r.holders[capability][identity]
	return ok
}

// grant adds the capability to the identity, reporting whether the
// assignment is new. Granting an already-held capability is a no-op.
func (r *roleRegistry) grant(capability Capability, identity string) bool {
	if r.has(capability, identity) {
		return false
	}
	r.holders[capability][identity] = struct{}{}
	return true
}
