package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates when absent", func(t *testing.T) {
		t.Parallel()

		var seen string
		handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("reuses incoming header", func(t *testing.T) {
		t.Parallel()

		var seen string
		handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "client-supplied")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "client-supplied", seen)
		assert.Equal(t, "client-supplied", w.Header().Get("X-Request-ID"))
	})
}

func TestCorrelationID_FallsBackToRequestID(t *testing.T) {
	t.Parallel()

	handler := Chain(RequestID(), CorrelationID())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	reqID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, w.Header().Get("X-Correlation-ID"))
}

func TestCorrelationID_ReusesIncomingHeader(t *testing.T) {
	t.Parallel()

	handler := Chain(RequestID(), CorrelationID())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "trace-42")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get("X-Correlation-ID"))
	assert.NotEqual(t, "trace-42", w.Header().Get("X-Request-ID"))
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(tag("outer"), tag("middle"), tag("inner"))(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "middle", "inner"}, order)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	// Panic values never reach the client.
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRedactHeaders(t *testing.T) {
	t.Parallel()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer secret-token")
	headers.Set("X-Api-Key", "key-123")
	headers.Set("Cookie", "session=abc")
	headers.Set("Accept", "application/json")
	headers.Add("Accept-Encoding", "gzip")
	headers.Add("Accept-Encoding", "br")

	attrs := RedactHeaders(headers)

	byKey := make(map[string]string, len(attrs))
	for _, a := range attrs {
		byKey[a.Key] = a.Value.String()
	}

	assert.Equal(t, "[REDACTED]", byKey["Authorization"])
	assert.Equal(t, "[REDACTED]", byKey["X-Api-Key"])
	assert.Equal(t, "[REDACTED]", byKey["Cookie"])
	assert.Equal(t, "application/json", byKey["Accept"])
	assert.Equal(t, "gzip,br", byKey["Accept-Encoding"])
}
