package rider

import "github.com/railmiles/rewards-service/internal/rewards"

// Reward is a coupon a rider can spend points on.
type Reward struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	PointsCost    float64 `json:"points_cost"`
	DiscountValue float64 `json:"discount_value"` // GBP
}

// RewardOffer is a catalog entry evaluated against one rider's balance.
type RewardOffer struct {
	Reward
	CanRedeem    bool    `json:"can_redeem"`
	PointsNeeded float64 `json:"points_needed"`
}

func rewardCatalog() []Reward {
	return []Reward{
		{ID: "reward-1", Title: "£1 Off Next Ticket", Description: "Redeem 10 points for £1 off your next train ticket", PointsCost: 10, DiscountValue: 1},
		{ID: "reward-2", Title: "£5 Off Next Ticket", Description: "Redeem 50 points for £5 off your next train ticket", PointsCost: 50, DiscountValue: 5},
		{ID: "reward-3", Title: "£10 Off Next Ticket", Description: "Redeem 100 points for £10 off your next train ticket", PointsCost: 100, DiscountValue: 10},
		{ID: "reward-4", Title: "Free Single Journey", Description: "Redeem 200 points for a free single journey ticket", PointsCost: 200, DiscountValue: 20},
	}
}

// offersFor marks which rewards the balance covers and how far off the rest are.
func offersFor(points float64) []RewardOffer {
	points = rewards.RoundPoints(points)
	catalog := rewardCatalog()
	out := make([]RewardOffer, 0, len(catalog))
	for _, r := range catalog {
		offer := RewardOffer{Reward: r, CanRedeem: points >= r.PointsCost}
		if !offer.CanRedeem {
			offer.PointsNeeded = rewards.RoundPoints(r.PointsCost - points)
		}
		out = append(out, offer)
	}
	return out
}
