package ratelimiter

import "time"

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}
