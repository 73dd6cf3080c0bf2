package appscript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/platform-mesh/room-access-proxy/pkg/authorization"
)

// maxResponseBytes caps how much of a service answer is read.
const maxResponseBytes = 1 << 20

var (
	queryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "room_access_query_duration_seconds",
		Help:    "A histogram of the request durations to the external authorization services in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"room"})

	queryOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "room_access_query_outcomes_total",
		Help: "Number of external authorization queries, by room and outcome.",
	}, []string{"room", "outcome"})
)

func init() {
	metrics.Registry.MustRegister(queryLatency, queryOutcomes)
}

type appScriptAuthorizer struct {
	room     string
	endpoint string
	client   *http.Client
}

var _ authorization.Handler = &appScriptAuthorizer{}

// New returns a Handler asking the script deployed at endpoint whether an
// email may enter the given room.
func New(client *http.Client, room int, endpoint string) authorization.Handler {
	return &appScriptAuthorizer{
		room:     strconv.Itoa(room),
		endpoint: endpoint,
		client:   client,
	}
}

func (a *appScriptAuthorizer) Handle(ctx context.Context, req authorization.Request) authorization.Response {
	klog.V(5).InfoS("handling request in AppScriptAuthorizer", "room", a.room)

	start := time.Now()
	res := a.check(ctx, req.Email)
	queryLatency.WithLabelValues(a.room).Observe(time.Since(start).Seconds())
	queryOutcomes.WithLabelValues(a.room, res.Outcome.String()).Inc()

	if res.Err != nil {
		klog.ErrorS(res.Err, "authorization service unreachable", "room", a.room)
	} else {
		klog.V(5).InfoS("authorization service answered", "room", a.room, "outcome", res.Outcome.String())
	}

	return res
}

func (a *appScriptAuthorizer) check(ctx context.Context, email string) authorization.Response {
	form := url.Values{}
	form.Set("email", email)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return authorization.Unreachable(fmt.Errorf("building request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return authorization.Unreachable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return authorization.Unreachable(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return authorization.Unreachable(fmt.Errorf("reading response: %w", err))
	}

	return Normalize(body)
}
