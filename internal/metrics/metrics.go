package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Metrics bundles the instruments the service records. All counters are
// best-effort; recording never blocks or fails a request.
type Metrics struct {
	HTTPRequests    metric.Int64Counter
	HTTPDuration    metric.Float64Histogram
	OrdersPlaced    metric.Int64Counter
	OrdersCancelled metric.Int64Counter
	StatusChanges   metric.Int64Counter
	MessagesSent    metric.Int64Counter
	WishlistToggles metric.Int64Counter
}

// Init sets up an OTLP/HTTP meter provider. An empty endpoint yields
// no-op instruments and a no-op shutdown, so call sites stay uniform.
func Init(ctx context.Context, serviceName, endpoint string) (*Metrics, func(context.Context) error, error) {
	if endpoint == "" {
		m, err := build(noop.NewMeterProvider().Meter(serviceName))
		return m, func(context.Context) error { return nil }, err
	}

	exp, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second))),
	)

	m, err := build(provider.Meter(serviceName))
	if err != nil {
		return nil, nil, err
	}
	return m, provider.Shutdown, nil
}

func build(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.HTTPRequests, err = meter.Int64Counter("http.server.requests"); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.OrdersPlaced, err = meter.Int64Counter("orders.placed"); err != nil {
		return nil, err
	}
	if m.OrdersCancelled, err = meter.Int64Counter("orders.cancelled"); err != nil {
		return nil, err
	}
	if m.StatusChanges, err = meter.Int64Counter("orders.status.changes"); err != nil {
		return nil, err
	}
	if m.MessagesSent, err = meter.Int64Counter("chat.messages.sent"); err != nil {
		return nil, err
	}
	if m.WishlistToggles, err = meter.Int64Counter("wishlist.toggles"); err != nil {
		return nil, err
	}
	return m, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the middleware.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records a counter and latency histogram per request,
// tagged with the chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
		)
		m.HTTPRequests.Add(r.Context(), 1, attrs)
		m.HTTPDuration.Record(r.Context(), float64(time.Since(start).Milliseconds()), attrs)
	})
}
