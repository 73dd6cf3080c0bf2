package authorization

import (
	"context"
)

// RoomCount is the number of external authorization services, one per room.
const RoomCount = 3

// Handler asks one external authorization service about an email.
type Handler interface {
	// Handle yields the outcome of a single service query.
	//
	// Failures of the service are reported through the Response, never by
	// panicking or blocking past the deadline of ctx.
	Handle(context.Context, Request) Response
}

// HandlerFunc implements Handler interface using a single function.
type HandlerFunc func(context.Context, Request) Response

var _ Handler = HandlerFunc(nil)

// Handle process the Request by invoking the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Aggregator combines the outcomes of all room handlers into one Decision.
type Aggregator interface {
	// Authorize returns an error only when the fan-out itself could not run.
	// Rejections and unreachable services are part of a successful Decision.
	Authorize(context.Context, Request) (Decision, error)
}

// Request defines the input for an authorization handler.
type Request struct {
	Email string
}
