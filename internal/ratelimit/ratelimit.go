// Package ratelimit implements per-key request admission for the HTTP
// front door. Keys are client addresses.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMax    = 100
	DefaultWindow = 15 * time.Minute

	Message = "Too many requests from this IP, please try again later."
)

// Limiter decides whether one more request for key is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
