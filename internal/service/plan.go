package service

// Membership plan terms. The backend owns pricing; these are the shell
// defaults shown on the membership and EMI pages.
const (
	DefaultCurrency = "inr"

	// annual SP membership verification fee, in minor units as the
	// backend expects it
	MembershipAmount int64 = 1200

	// 12-month EMI plan monthly charge
	EMIMonthlyAmount int64 = 5

	MembershipTitle = "SP Membership"
	EMIPlanTitle    = "12-Month EMI Plan"
	PlanValidTill   = "Dec 31 2026"
)
