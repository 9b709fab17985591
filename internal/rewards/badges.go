package rewards

import "math"

// badgeTiers is ordered by strictly increasing threshold. Keep the types stable because
// clients persist them.
var badgeTiers = []Badge{
	{
		Type:          BadgeBronze,
		Name:          "Bronze Explorer",
		Description:   "Starting your railway adventure",
		MilesRequired: 0,
		IconURL:       "/badges/bronze.svg",
	},
	{
		Type:          BadgeSilver,
		Name:          "Silver Traveler",
		Description:   "Traveled 200 miles by train",
		MilesRequired: 200,
		IconURL:       "/badges/silver.svg",
	},
	{
		Type:          BadgeGold,
		Name:          "Gold Voyager",
		Description:   "Traveled 700 miles by train",
		MilesRequired: 700,
		IconURL:       "/badges/gold.svg",
	},
	{
		Type:          BadgeDiamond,
		Name:          "Diamond Commuter",
		Description:   "Traveled 2500 miles by train",
		MilesRequired: 2500,
		IconURL:       "/badges/diamond.svg",
	},
	{
		Type:          BadgePlatinum,
		Name:          "Platinum Railway Master",
		Description:   "Traveled 8000 miles by train",
		MilesRequired: 8000,
		IconURL:       "/badges/platinum.svg",
	},
}

// Badges returns a copy of the tier table, lowest tier first.
func Badges() []Badge {
	out := make([]Badge, len(badgeTiers))
	copy(out, badgeTiers)
	return out
}

// ResolveBadge returns the highest tier whose threshold does not exceed miles.
// Negative and NaN mileage resolve to the base tier.
func ResolveBadge(miles float64) Badge {
	return badgeTiers[tierIndex(miles)]
}

// ProgressFor reports progress toward the tier after the one miles resolves to.
func ProgressFor(miles float64) BadgeProgress {
	return ProgressWithin(miles, ResolveBadge(miles))
}

// ProgressWithin reports progress from current toward the following tier. current may lag
// behind the resolved tier (for example a stored badge); the percentage then saturates at 100.
func ProgressWithin(miles float64, current Badge) BadgeProgress {
	miles = sanitizeMiles(miles)

	idx := indexOf(current.Type)
	if idx < 0 {
		idx = tierIndex(miles)
	}
	current = badgeTiers[idx]

	progress := BadgeProgress{
		Current:    current,
		TotalMiles: miles,
	}

	if idx == len(badgeTiers)-1 {
		progress.ProgressPercent = 100
		return progress
	}

	next := badgeTiers[idx+1]
	progress.Next = &next

	span := next.MilesRequired - current.MilesRequired
	percent := int(math.Round(100 * (miles - current.MilesRequired) / span))
	progress.ProgressPercent = clampPercent(percent)
	progress.MilesRemaining = math.Max(0, next.MilesRequired-miles)

	return progress
}

func tierIndex(miles float64) int {
	miles = sanitizeMiles(miles)
	idx := 0
	for i, b := range badgeTiers {
		if miles >= b.MilesRequired {
			idx = i
		}
	}
	return idx
}

func indexOf(t BadgeType) int {
	for i, b := range badgeTiers {
		if b.Type == t {
			return i
		}
	}
	return -1
}

func sanitizeMiles(miles float64) float64 {
	if math.IsNaN(miles) || miles < 0 {
		return 0
	}
	return miles
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
