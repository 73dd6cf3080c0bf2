package union

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/platform-mesh/room-access-proxy/pkg/authorization"
)

var (
	ErrRoomCount    = fmt.Errorf("exactly %d authorization handlers are required", authorization.RoomCount)
	ErrHandlerPanic = errors.New("authorization handler panicked")
)

var decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "room_access_decisions_total",
	Help: "Number of aggregate access decisions, by whether access was granted.",
}, []string{"granted"})

func init() {
	metrics.Registry.MustRegister(decisions)
}

type authorizationUnion struct {
	handlers     []authorization.Handler
	queryTimeout time.Duration
}

var _ authorization.Aggregator = &authorizationUnion{}

// New returns an Aggregator querying every handler concurrently, one per room
// in room order. Each query gets its own queryTimeout; zero leaves the
// deadline to the handler.
func New(queryTimeout time.Duration, handlers ...authorization.Handler) (authorization.Aggregator, error) {
	if len(handlers) != authorization.RoomCount {
		return nil, ErrRoomCount
	}
	for i, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("handler for room %d is nil", i+1)
		}
	}

	return &authorizationUnion{
		handlers:     handlers,
		queryTimeout: queryTimeout,
	}, nil
}

// Authorize implements authorization.Aggregator.
func (u *authorizationUnion) Authorize(ctx context.Context, req authorization.Request) (authorization.Decision, error) {
	responses := make([]authorization.Response, len(u.handlers))

	var g errgroup.Group
	for i, h := range u.handlers {
		i, h := i, h
		g.Go(func() error {
			responses[i] = u.query(ctx, i+1, h, req)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	panicked := 0
	for i, res := range responses {
		if res.Outcome != authorization.OutcomeUnreachable {
			continue
		}
		if errors.Is(res.Err, ErrHandlerPanic) {
			panicked++
		}
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("room %d: %w", i+1, res.Err))
		}
	}

	agg := utilerrors.NewAggregate(errs)
	if panicked == len(responses) {
		return authorization.Decision{}, agg
	}
	if agg != nil {
		klog.V(2).InfoS("some authorization services were unreachable", "errors", agg.Error())
	}

	d := authorization.Reduce(responses)
	decisions.WithLabelValues(strconv.FormatBool(d.Granted)).Inc()

	return d, nil
}

// query settles to a Response once the handler returns or the query
// deadline passes, whichever comes first. A handler ignoring ctx is left
// running but no longer holds up the decision.
func (u *authorizationUnion) query(ctx context.Context, room int, h authorization.Handler, req authorization.Request) authorization.Response {
	if u.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.queryTimeout)
		defer cancel()
	}

	done := make(chan authorization.Response, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				klog.ErrorS(nil, "recovered from panic in authorization handler", "room", room, "panic", p)
				done <- authorization.Unreachable(fmt.Errorf("%w: %v", ErrHandlerPanic, p))
			}
		}()
		done <- h.Handle(ctx, req)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		klog.V(2).InfoS("authorization query did not settle in time", "room", room)
		return authorization.Unreachable(fmt.Errorf("query abandoned: %w", ctx.Err()))
	}
}
