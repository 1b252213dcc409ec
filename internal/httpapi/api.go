// Package httpapi is the HTTP transport for the task service.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"taskhub.org/internal/auth"
	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/obs"
	"taskhub.org/internal/stream"
	"taskhub.org/internal/task"
	"taskhub.org/internal/user"
)

// ReadyProbe reports whether the service can serve traffic, typically by
// pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options wires the API's collaborators and transport limits.
type Options struct {
	Auth   *auth.Service
	Users  *user.Service
	Tasks  *task.Service
	Events *eventlog.Log
	Stream *stream.Stream

	Ready   ReadyProbe
	Version string

	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int
	MaxBodyBytes   int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	users      *user.Service
	tasks      *task.Service
	events     *eventlog.Log
	stream     *stream.Stream
	readyProbe ReadyProbe
	version    string
	opts       Options
}

// New registers all routes and returns the API.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		users:      opts.Users,
		tasks:      opts.Tasks,
		events:     opts.Events,
		stream:     opts.Stream,
		readyProbe: opts.Ready,
		version:    opts.Version,
		opts:       opts,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)

	a.mux.HandleFunc("/v1/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/v1/tasks/", a.handleTaskResource)

	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	a.mux.HandleFunc("/v1/events", a.handleEvents)

	a.mux.HandleFunc("/v1/stream", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = obs.Instrument(h)
	if a.opts.MaxBodyBytes > 0 {
		h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	}
	if a.opts.RateLimitRPS > 0 {
		h = RateLimit(h, a.opts.RateLimitBurst, a.opts.RateLimitRPS)
	}
	h = CORS(h, a.opts.AllowedOrigins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}
