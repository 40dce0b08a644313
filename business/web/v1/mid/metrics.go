package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/powchain/business/sys/metrics"
	"github.com/ardanlabs/powchain/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	m := func(handler web.Handler) web.Handler {

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			ctx = metrics.Set(ctx)

			if n := metrics.AddRequests(ctx); n%100 == 0 {
				metrics.AddGoroutines(ctx)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
