package authorization_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/platform-mesh/room-access-proxy/pkg/authorization"
	"github.com/platform-mesh/room-access-proxy/pkg/authorization/mocks"
)

func configured() []authorization.EndpointStatus {
	return []authorization.EndpointStatus{
		{Key: "hasAppScriptCodigo", Configured: true},
		{Key: "hasAppScriptMaquina", Configured: true},
		{Key: "hasAppScriptMaestria", Configured: true},
	}
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServeHTTP(t *testing.T) {
	testCases := []struct {
		name               string
		endpoints          []authorization.EndpointStatus
		aggregatorMocks    func(*mocks.Aggregator)
		nilAggregator      bool
		req                func() *http.Request
		responseAssertions func(*testing.T, *http.Response)
	}{
		{
			name:          "should answer preflight even without configuration",
			nilAggregator: true,
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodOptions, "/authorize", nil)
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.Empty(t, readBody(t, res))
			},
		},
		{
			name: "should report which endpoints are configured",
			endpoints: []authorization.EndpointStatus{
				{Key: "hasAppScriptCodigo", Configured: true},
				{Key: "hasAppScriptMaquina", Configured: false},
				{Key: "hasAppScriptMaestria", Configured: true},
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/authorize", nil)
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.JSONEq(t, `{
					"status": "OK",
					"endpoint": "POST /authorize",
					"envStatus": {
						"hasAppScriptCodigo": true,
						"hasAppScriptMaquina": false,
						"hasAppScriptMaestria": true
					}
				}`, readBody(t, res))
			},
		},
		{
			name: "should reject unsupported methods",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPut, "/authorize", nil)
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
				assert.JSONEq(t, `{"error":"Método no permitido"}`, readBody(t, res))
			},
		},
		{
			name: "should fail for no body",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", http.NoBody)
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
				assert.JSONEq(t, `{"hasAccess":false,"error":"Email es requerido"}`, readBody(t, res))
			},
		},
		{
			name: "should fail for an empty email",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":""}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
				assert.JSONEq(t, `{"hasAccess":false,"error":"Email es requerido"}`, readBody(t, res))
			},
		},
		{
			name: "should fail for wrong body content",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader("{"))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
				assert.JSONEq(t, `{"hasAccess":false,"error":"Cuerpo de la solicitud inválido"}`, readBody(t, res))
			},
		},
		{
			name: "should fail for a body above the size limit",
			req: func() *http.Request {
				body := `{"email":"` + strings.Repeat("a", 2<<20) + `"}`
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(body))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			},
		},
		{
			name: "should not query services when an endpoint is missing",
			endpoints: []authorization.EndpointStatus{
				{Key: "hasAppScriptCodigo", Configured: true},
				{Key: "hasAppScriptMaquina", Configured: true},
				{Key: "hasAppScriptMaestria", Configured: false},
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
				assert.JSONEq(t, `{
					"hasAccess": false,
					"error": "Error de configuración en el servidor: Variables de entorno no configuradas"
				}`, readBody(t, res))
			},
		},
		{
			name:          "should fail as misconfigured without an aggregator",
			nilAggregator: true,
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
			},
		},
		{
			name: "should return the decision of the aggregator",
			aggregatorMocks: func(a *mocks.Aggregator) {
				a.EXPECT().Authorize(mock.Anything, authorization.Request{Email: "ana@example.com"}).
					Return(authorization.Decision{
						Granted: true,
						Entries: []*authorization.Entry{
							nil,
							{OK: true, EntryURL: ptr("https://meet.example/2"), ContactHandle: ptr("573000000002")},
							nil,
						},
						ContactHandle: ptr("573000000002"),
					}, nil)
			},
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
				assert.JSONEq(t, `{
					"hasAccess": true,
					"accessibleServers": [
						null,
						{"ok": true, "entryUrl": "https://meet.example/2", "contactHandle": "573000000002"},
						null
					],
					"whatsapp": "573000000002",
					"error": null
				}`, readBody(t, res))
			},
		},
		{
			name: "should answer 200 with an error message when nobody authorizes",
			aggregatorMocks: func(a *mocks.Aggregator) {
				a.EXPECT().Authorize(mock.Anything, mock.Anything).
					Return(authorization.Decision{Entries: []*authorization.Entry{nil, nil, nil}}, nil)
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"nobody@example.com"}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.JSONEq(t, `{
					"hasAccess": false,
					"accessibleServers": [null, null, null],
					"whatsapp": null,
					"error": "Email no autorizado"
				}`, readBody(t, res))
			},
		},
		{
			name: "should pass the email through without validating its format",
			aggregatorMocks: func(a *mocks.Aggregator) {
				a.EXPECT().Authorize(mock.Anything, authorization.Request{Email: " not an email "}).
					Return(authorization.Decision{Entries: []*authorization.Entry{nil, nil, nil}}, nil)
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":" not an email "}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusOK, res.StatusCode)
			},
		},
		{
			name: "should map an aggregator failure to an internal error",
			aggregatorMocks: func(a *mocks.Aggregator) {
				a.EXPECT().Authorize(mock.Anything, mock.Anything).
					Return(authorization.Decision{}, errors.New("boom"))
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
				assert.JSONEq(t, `{"hasAccess":false,"error":"Error en el servidor: boom"}`, readBody(t, res))
			},
		},
		{
			name: "should recover from a panicking aggregator",
			aggregatorMocks: func(a *mocks.Aggregator) {
				a.EXPECT().Authorize(mock.Anything, mock.Anything).
					RunAndReturn(func(ctx context.Context, r authorization.Request) (authorization.Decision, error) {
						panic("nil map")
					})
			},
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`))
			},
			responseAssertions: func(t *testing.T, res *http.Response) {
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
				assert.Contains(t, readBody(t, res), "Error en el servidor: panic: nil map")
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			endpoints := test.endpoints
			if endpoints == nil {
				endpoints = configured()
			}

			var aggregator authorization.Aggregator
			if !test.nilAggregator {
				m := mocks.NewAggregator(t)
				if test.aggregatorMocks != nil {
					test.aggregatorMocks(m)
				}
				aggregator = m
			}

			wh := authorization.New(klog.NewKlogr(), aggregator, endpoints)

			res := httptest.NewRecorder()

			wh.ServeHTTP(res, test.req())

			handledResponse := res.Result()
			assert.Equal(t, "*", handledResponse.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, GET, OPTIONS", handledResponse.Header.Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", handledResponse.Header.Get("Access-Control-Allow-Headers"))
			if test.responseAssertions != nil {
				test.responseAssertions(t, handledResponse)
			}
		})
	}
}

func TestServeHTTPOptions(t *testing.T) {
	m := mocks.NewAggregator(t)
	wh := authorization.New(klog.NewKlogr(), m, configured(),
		authorization.WithAllowedOrigin("https://rooms.example"),
		authorization.WithMaxBodyBytes(16),
	)

	t.Run("uses the configured origin", func(t *testing.T) {
		res := httptest.NewRecorder()
		wh.ServeHTTP(res, httptest.NewRequest(http.MethodOptions, "/authorize", nil))

		assert.Equal(t, "https://rooms.example", res.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("uses the configured body limit", func(t *testing.T) {
		res := httptest.NewRecorder()
		wh.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{"email":"ana@example.com"}`)))

		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("reports the path it was reached on", func(t *testing.T) {
		res := httptest.NewRecorder()
		wh.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/validate-email", nil))

		assert.Contains(t, res.Body.String(), `"endpoint":"POST /api/validate-email"`)
	})
}
