package application

import "expvar"

// Order counters exported at /api/debug/vars.
var (
	ordersCreated   = expvar.NewInt("orders_created")
	ordersPaid      = expvar.NewInt("orders_paid")
	ordersDelivered = expvar.NewInt("orders_delivered")
	ordersCancelled = expvar.NewInt("orders_cancelled")
)
