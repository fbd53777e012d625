package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type CartRefetcher interface {
	ScheduleRefetch(ctx context.Context)
}

type DeliveryResetter interface {
	Reset(ctx context.Context) error
}

type cartUpdated struct {
	UserID string `json:"userId"`
}

// CartUpdated refetches the cart when it changed elsewhere, e.g. in another
// tab. Events addressed to another user are ignored; currentUser returns ""
// for guests, who accept every event.
func CartUpdated(cart CartRefetcher, currentUser func() string) HandlerFunc {
	return func(ctx context.Context, data []byte) error {
		var evt cartUpdated
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &evt); err != nil {
				return fmt.Errorf("decoding cart event: %w", err)
			}
		}

		if user := currentUser(); evt.UserID != "" && user != "" && evt.UserID != user {
			return nil
		}
		cart.ScheduleRefetch(ctx)
		return nil
	}
}

// AreasUpdated drops the delivery verdict after service areas changed, so
// the next check asks the server again.
func AreasUpdated(delivery DeliveryResetter) HandlerFunc {
	return func(ctx context.Context, _ []byte) error {
		return delivery.Reset(ctx)
	}
}
