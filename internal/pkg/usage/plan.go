package usage

// Plan is a subscription tier. The tier sets the daily ceiling on
// user-originated messages; AI replies are tallied separately and not
// limited.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

const (
	freeDailyLimit    = 50
	premiumDailyLimit = 1000
)

// ParsePlan maps a stored plan string onto a known tier, defaulting to free.
func ParsePlan(s string) Plan {
	if s == string(PlanPremium) {
		return PlanPremium
	}
	return PlanFree
}

// DailyLimit returns the tier's daily message ceiling.
func (p Plan) DailyLimit() int {
	if p == PlanPremium {
		return premiumDailyLimit
	}
	return freeDailyLimit
}

// Premium reports whether the tier is a paid one.
func (p Plan) Premium() bool {
	return p == PlanPremium
}
