package dispatch

import (
	"context"

	"github.com/sharpline/sharpline-alerts/internal/store"
)

// Sender delivers one alert to a user over some channel. Implementations
// must be safe for concurrent use.
type Sender interface {
	Name() string
	Send(ctx context.Context, row store.DeliveryRow) error
}
