package http_test

import (
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

func httpxLimit(perMinute int) httpx.RateLimit {
	return httpx.RateLimit{Requests: perMinute, Window: time.Minute, Burst: perMinute}
}
