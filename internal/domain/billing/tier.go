package billing

// Tier is a subscription tier
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// IsValid checks whether the tier is known
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	default:
		return false
	}
}

// HasPro reports whether the tier includes paid features
func (t Tier) HasPro() bool {
	return t == TierPro || t == TierEnterprise
}

// String returns the tier as a string
func (t Tier) String() string {
	return string(t)
}

// ParseTier normalizes a stored plan value into a Tier, defaulting to free
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPro:
		return TierPro
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}
