package authorization

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
)

const (
	msgEmailRequired    = "Email es requerido"
	msgInvalidBody      = "Cuerpo de la solicitud inválido"
	msgMisconfigured    = "Error de configuración en el servidor: Variables de entorno no configuradas"
	msgNotAuthorized    = "Email no autorizado"
	msgInternalPrefix   = "Error en el servidor: "
	msgMethodNotAllowed = "Método no permitido"

	defaultMaxBodyBytes = 1 << 20
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrMisconfigured = errors.New("authorization endpoints are not configured")
)

var _ http.Handler = &Webhook{}

// EndpointStatus reports whether one room's service is configured. The URL
// itself is never part of it.
type EndpointStatus struct {
	Key        string
	Configured bool
}

// Webhook is the HTTP boundary of the Aggregator.
type Webhook struct {
	// Aggregator decides on POST requests. It may be nil when the endpoints
	// are not configured.
	Aggregator Aggregator
	Endpoints  []EndpointStatus

	allowedOrigin string
	maxBodyBytes  int64
	log           logr.Logger
}

type Option func(*Webhook)

// WithAllowedOrigin sets the Access-Control-Allow-Origin value. Defaults to "*".
func WithAllowedOrigin(origin string) Option {
	return func(wh *Webhook) {
		if origin != "" {
			wh.allowedOrigin = origin
		}
	}
}

// WithMaxBodyBytes limits the size of a POST body.
func WithMaxBodyBytes(n int64) Option {
	return func(wh *Webhook) {
		if n > 0 {
			wh.maxBodyBytes = n
		}
	}
}

func New(log logr.Logger, aggregator Aggregator, endpoints []EndpointStatus, opts ...Option) *Webhook {
	wh := &Webhook{
		Aggregator:    aggregator,
		Endpoints:     endpoints,
		allowedOrigin: "*",
		maxBodyBytes:  defaultMaxBodyBytes,
		log:           log.WithName("webhook"),
	}
	for _, opt := range opts {
		opt(wh)
	}
	return wh
}

type authorizeRequest struct {
	Email string `json:"email"`
}

type authorizeResponse struct {
	HasAccess         bool     `json:"hasAccess"`
	AccessibleServers []*Entry `json:"accessibleServers"`
	Whatsapp          *string  `json:"whatsapp"`
	Error             *string  `json:"error"`
}

type failureResponse struct {
	HasAccess bool   `json:"hasAccess"`
	Error     string `json:"error"`
}

type methodResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status    string          `json:"status"`
	Endpoint  string          `json:"endpoint"`
	EnvStatus map[string]bool `json:"envStatus"`
}

// ServeHTTP implements http.Handler.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", wh.allowedOrigin)
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		wh.serveStatus(w, r)
	case http.MethodPost:
		wh.serveAuthorize(w, r)
	default:
		wh.writeResponse(w, http.StatusMethodNotAllowed, methodResponse{Error: msgMethodNotAllowed})
	}
}

func (wh *Webhook) serveStatus(w http.ResponseWriter, r *http.Request) {
	wh.writeResponse(w, http.StatusOK, statusResponse{
		Status:    "OK",
		Endpoint:  "POST " + r.URL.Path,
		EnvStatus: wh.envStatus(),
	})
}

func (wh *Webhook) serveAuthorize(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			wh.log.Error(err, "unexpected failure while authorizing")
			wh.writeResponse(w, http.StatusInternalServerError, failureResponse{Error: msgInternalPrefix + err.Error()})
		}
	}()

	req, err := wh.decode(w, r)
	if err != nil {
		wh.log.V(2).Info("rejecting request", "reason", err.Error())
		msg := msgInvalidBody
		if errors.Is(err, ErrEmailRequired) {
			msg = msgEmailRequired
		}
		wh.writeResponse(w, http.StatusBadRequest, failureResponse{Error: msg})
		return
	}

	if err := wh.checkConfigured(); err != nil {
		wh.log.Error(err, "configuration fault, refusing to query authorization services", "endpoints", wh.envStatus())
		wh.writeResponse(w, http.StatusInternalServerError, failureResponse{Error: msgMisconfigured})
		return
	}

	wh.log.V(5).Info("received request", "email", req.Email)

	decision, err := wh.Aggregator.Authorize(r.Context(), req)
	if err != nil {
		wh.log.Error(err, "unable to run authorization")
		wh.writeResponse(w, http.StatusInternalServerError, failureResponse{Error: msgInternalPrefix + err.Error()})
		return
	}

	res := authorizeResponse{
		HasAccess:         decision.Granted,
		AccessibleServers: decision.Entries,
		Whatsapp:          decision.ContactHandle,
	}
	if !decision.Granted {
		msg := msgNotAuthorized
		res.Error = &msg
	}

	wh.writeResponse(w, http.StatusOK, res)
	wh.log.V(5).Info("wrote response", "hasAccess", decision.Granted)
}

func (wh *Webhook) decode(w http.ResponseWriter, r *http.Request) (Request, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return Request{}, ErrEmailRequired
	}
	defer r.Body.Close()

	var body authorizeRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, wh.maxBodyBytes)).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		return Request{}, fmt.Errorf("decoding request body: %w", err)
	}

	if body.Email == "" {
		return Request{}, ErrEmailRequired
	}

	return Request{Email: body.Email}, nil
}

func (wh *Webhook) checkConfigured() error {
	if wh.Aggregator == nil || len(wh.Endpoints) != RoomCount {
		return ErrMisconfigured
	}
	for _, e := range wh.Endpoints {
		if !e.Configured {
			return ErrMisconfigured
		}
	}
	return nil
}

func (wh *Webhook) envStatus() map[string]bool {
	env := make(map[string]bool, len(wh.Endpoints))
	for _, e := range wh.Endpoints {
		env[e.Key] = e.Configured
	}
	return env
}

func (wh *Webhook) writeResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		wh.log.Error(err, "unable to encode the response")
	}
}
