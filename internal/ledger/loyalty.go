package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

// DiscountAmount is the tier discount on a cart subtotal, floored to whole
// rupiah. Walk-in sales (nil customer) get none.
func DiscountAmount(subtotal int64, c *domain.Customer, set domain.AppSettings) int64 {
	if c == nil || subtotal <= 0 {
		return 0
	}
	rate := set.TierDiscounts.For(c.Tier)
	if rate <= 0 {
		return 0
	}
	return int64(math.Floor(float64(subtotal) * rate / 100))
}

// EarnedPoints is the points a sale total yields: total divided by the
// point value (integer floor), scaled by the tier multiplier and floored
// again. Zero for non-members and when points are disabled. A multiplier
// of zero or less falls back to 1.
func EarnedPoints(total int64, c *domain.Customer, set domain.AppSettings) int64 {
	if c == nil || !c.IsMember || !set.EnablePoints {
		return 0
	}
	if set.PointValue <= 0 || total <= 0 {
		return 0
	}
	base := total / set.PointValue
	mult := set.TierMultipliers.For(c.Tier)
	if mult <= 0 {
		mult = 1
	}
	return int64(math.Floor(float64(base) * mult))
}

// ApplyEarn credits points on the in-memory customer and returns the history
// entry to append once the customer is saved. Nil when points is zero or
// negative: no balance change, no history.
func ApplyEarn(warungID string, c *domain.Customer, points int64, referenceID string) *domain.PointHistory {
	if points <= 0 {
		return nil
	}
	c.PointsBalance += points
	return &domain.PointHistory{
		ID:           xid.New("pth"),
		WarungID:     warungID,
		CustomerID:   c.ID,
		CustomerName: c.Name,
		Type:         domain.PointEarn,
		Points:       points,
		ReferenceID:  referenceID,
		Timestamp:    time.Now().UTC(),
	}
}

// Loyalty owns point balances and reward stock.
type Loyalty struct {
	store store.Store
}

func NewLoyalty(st store.Store) *Loyalty {
	return &Loyalty{store: st}
}

// Redeem exchanges points for a reward. Both guards are checked before any
// write: an insufficient balance or an out-of-stock reward rejects the
// redemption with every record untouched.
func (l *Loyalty) Redeem(ctx context.Context, warungID, customerID, rewardID string) (*domain.RedemptionResult, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		c, err := l.store.GetCustomer(ctx, warungID, customerID)
		if err != nil {
			return nil, err
		}
		r, err := l.store.GetPointReward(ctx, warungID, rewardID)
		if err != nil {
			return nil, err
		}
		if c.PointsBalance < r.PointsNeeded {
			return nil, domain.Invalid(domain.CodeInsufficientPoints,
				"customer has %d points, reward needs %d", c.PointsBalance, r.PointsNeeded)
		}
		if r.Stock <= 0 {
			return nil, domain.Invalid(domain.CodeRewardOutOfStock,
				"reward %q is out of stock", r.Name)
		}

		c.PointsBalance -= r.PointsNeeded
		savedCustomer, err := l.store.PutCustomer(ctx, warungID, *c)
		if err == store.ErrVersionConflict {
			metrics.VersionConflictRetries.Inc()
			continue
		}
		if err != nil {
			return nil, err
		}

		savedReward, err := l.decrementRewardStock(ctx, warungID, r)
		if err != nil {
			return nil, err
		}

		hist := domain.PointHistory{
			ID:           xid.New("pth"),
			WarungID:     warungID,
			CustomerID:   savedCustomer.ID,
			CustomerName: savedCustomer.Name,
			Type:         domain.PointRedeem,
			Points:       savedReward.PointsNeeded,
			ReferenceID:  savedReward.ID,
			Timestamp:    time.Now().UTC(),
		}
		if err := l.store.AppendPointHistory(ctx, warungID, hist); err != nil {
			return nil, err
		}
		metrics.PointsRedeemed.Add(float64(savedReward.PointsNeeded))
		return &domain.RedemptionResult{
			Customer: *savedCustomer,
			Reward:   *savedReward,
			History:  hist,
		}, nil
	}
	return nil, fmt.Errorf("redeem %s: %w", rewardID, store.ErrVersionConflict)
}

// decrementRewardStock retries on its own: once the customer's points are
// debited the redemption is committed, so a concurrent reward edit must not
// unwind it.
func (l *Loyalty) decrementRewardStock(ctx context.Context, warungID string, r *domain.PointReward) (*domain.PointReward, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		r.Stock--
		saved, err := l.store.PutPointReward(ctx, warungID, *r)
		if err == store.ErrVersionConflict {
			metrics.VersionConflictRetries.Inc()
			fresh, gerr := l.store.GetPointReward(ctx, warungID, r.ID)
			if gerr != nil {
				return nil, gerr
			}
			r = fresh
			continue
		}
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return nil, fmt.Errorf("decrement reward %s: %w", r.ID, store.ErrVersionConflict)
}
