package notify

import (
	"fmt"

	"go.uber.org/zap"
)

const adjustedMessage = "Some items in your cart were adjusted due to stock changes."

// Alerter turns reconciliation outcomes into user-visible messages.
// Stateless; firing at most once per pass is the store's job.
type Alerter struct {
	log  *zap.Logger
	sink func(msg string)
}

// NewAlerter builds an Alerter that logs every outcome and, when sink
// is non-nil, forwards the user-facing message to it (the UI layer).
func NewAlerter(log *zap.Logger, sink func(string)) *Alerter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Alerter{log: log, sink: sink}
}

func (a *Alerter) CartAdjusted() {
	a.log.Info("cart adjusted to match stock")
	if a.sink != nil {
		a.sink(adjustedMessage)
	}
}

func (a *Alerter) StockCheckFailed(productID string, err error) {
	a.log.Warn("stock check failed during reconciliation",
		zap.String("product_id", productID), zap.Error(err))
	if a.sink != nil {
		a.sink(fmt.Sprintf("Could not verify stock for product %s.", productID))
	}
}
