package features

// Scope is the capability set resolved once per request from the account's
// plan and passed down to call sites. No global lookup table: whoever needs a
// gate receives the value.
type Scope struct {
	Deltas      bool
	Heatmap     bool
	TopLists    bool
	Exports     bool
	RawLog      bool
	Conversions bool
}

// ForPlan maps a plan name to its capability set. Unknown plans get the free
// tier.
func ForPlan(plan string) Scope {
	switch plan {
	case "pro", "scale":
		return Scope{
			Deltas:      true,
			Heatmap:     true,
			TopLists:    true,
			Exports:     true,
			RawLog:      true,
			Conversions: true,
		}
	default:
		return Scope{}
	}
}
