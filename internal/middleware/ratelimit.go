package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/aimeelabs/aimee-backend/internal/request"
)

const defaultRatelimitRate = "60-M"

// RateLimit returns middleware that uses ulule/limiter with an in-memory
// store, keyed by client IP. rateStr uses limiter's "<count>-<period>"
// format, e.g. "60-M".
func RateLimit(rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultRatelimitRate
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memorystore.NewStore(), rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
