package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func tracedContext(t *testing.T) context.Context {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	t.Cleanup(func() { span.End() })
	return ctx
}

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInit_InvalidSamplingRatio(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, SamplingRatio: 2})
	require.Error(t, err)
}

func TestKafkaCarrier_RoundTrip(t *testing.T) {
	setPropagator()
	ctx := tracedContext(t)

	msg := kafka.Message{}
	InjectKafka(ctx, &msg)
	require.NotEmpty(t, msg.Headers)

	got := ExtractKafka(context.Background(), &msg)
	require.Equal(t, TraceFields(ctx), TraceFields(got))
}

func TestKafkaCarrier_SetOverwrites(t *testing.T) {
	msg := kafka.Message{}
	c := NewKafkaHeaderCarrier(&msg)
	c.Set("k", "1")
	c.Set("k", "2")

	require.Len(t, msg.Headers, 1)
	require.Equal(t, "2", c.Get("k"))
	require.Equal(t, []string{"k"}, c.Keys())
	require.Empty(t, c.Get("missing"))
}

func TestClientTransport_InjectsTraceparent(t *testing.T) {
	setPropagator()
	ctx := tracedContext(t)

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("traceparent")
	}))
	defer srv.Close()

	client := &http.Client{Transport: ClientTransport("test", nil)}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.NotEmpty(t, got)
	require.Empty(t, req.Header.Get("traceparent"), "original request must stay untouched")
}

func TestHTTPMiddleware_PutsLoggerIntoContext(t *testing.T) {
	base := zap.NewNop()
	var fromCtx *zap.Logger

	h := HTTPMiddleware("test", base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = LoggerFromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, fromCtx)
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	fallback := zap.NewNop()
	require.Same(t, fallback, LoggerFromContext(context.Background(), fallback))
}

var _ propagation.TextMapCarrier = (*kafkaHeaderCarrier)(nil)
