package cache

import (
	"context"
	"fmt"
	"time"
)

// Entity classes that carry their own TTL.
const (
	ClassReservations        = "reservations"
	ClassReservationServices = "reservationServices"
)

// Cache is the read-through store used for lookups by id.
// Get reports false with a nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type TTLs struct {
	Default             time.Duration
	Reservations        time.Duration
	ReservationServices time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Default:             10 * time.Minute,
		Reservations:        15 * time.Minute,
		ReservationServices: 30 * time.Minute,
	}
}

// For returns the TTL configured for class, or Default when the class has none.
func (t TTLs) For(class string) time.Duration {
	var ttl time.Duration
	switch class {
	case ClassReservations:
		ttl = t.Reservations
	case ClassReservationServices:
		ttl = t.ReservationServices
	}
	if ttl <= 0 {
		return t.Default
	}
	return ttl
}

func Key(class string, id uint) string {
	return fmt.Sprintf("%s::%d", class, id)
}

// NoopCache never stores anything. Used when no Redis URL is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error               { return nil }
