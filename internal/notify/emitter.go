package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeCartAdd    = "CART_ADD"
	TypeCartRemove = "CART_REMOVE"

	subjectAdded   = "storefront.cart.added"
	subjectRemoved = "storefront.cart.removed"
)

// Notification is the record handed to the notification subsystem.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the slice of the broker connection the emitter needs.
// *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Emitter publishes cart domain events. Fire-and-forget: a dead
// broker never fails a cart operation.
type Emitter struct {
	pub Publisher
	log *zap.Logger
}

func NewEmitter(pub Publisher, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{pub: pub, log: log}
}

func (e *Emitter) CartAdded(productName string) {
	e.publish(subjectAdded, Notification{
		ID:        uuid.NewString(),
		Type:      TypeCartAdd,
		Message:   fmt.Sprintf("%s was added to your cart.", productName),
		Timestamp: time.Now().UTC(),
	})
}

func (e *Emitter) CartRemoved(productName string) {
	e.publish(subjectRemoved, Notification{
		ID:        uuid.NewString(),
		Type:      TypeCartRemove,
		Message:   fmt.Sprintf("%s was removed from your cart.", productName),
		Timestamp: time.Now().UTC(),
	})
}

func (e *Emitter) publish(subject string, n Notification) {
	if e.pub == nil {
		return
	}

	data, err := json.Marshal(n)
	if err != nil {
		e.log.Error("marshal notification", zap.Error(err))
		return
	}

	if err := e.pub.Publish(subject, data); err != nil {
		e.log.Warn("publish notification failed",
			zap.String("subject", subject), zap.Error(err))
	}
}
