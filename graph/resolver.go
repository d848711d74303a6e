// Package graph serves the GraphQL API: schema, resolvers and the
// websocket transport for subscriptions.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"starides-api/apperr"
	"starides-api/events"
	"starides-api/services"
)

//go:embed schema.graphql
var schemaSDL string

// Services are the domain services resolvers call into.
type Services struct {
	Users       *services.UserService
	Resets      *services.PasswordResetService
	Restaurants *services.RestaurantService
	Menu        *services.MenuService
	Orders      *services.OrderService
	Reviews     *services.ReviewService
	Stats       *services.StatsService
	Chat        *services.ChatService
}

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	svc Services
	hub *events.Hub
	log *slog.Logger
}

func NewResolver(svc Services, hub *events.Hub, log *slog.Logger) *Resolver {
	return &Resolver{svc: svc, hub: hub, log: log}
}

// NewSchema parses the embedded schema against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(12),
		graphql.Logger(panicLogger{log: r.log}),
	)
}

type panicLogger struct {
	log *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.log.ErrorContext(ctx, "graphql resolver panic", "action", "graphql", "panic", fmt.Sprint(value))
}

// fail converts err for graphql-go, which reads Extensions() off the
// returned error. Internal causes are logged and never sent to clients.
func (r *Resolver) fail(ctx context.Context, err error) error {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		r.log.ErrorContext(ctx, "graphql request failed", "action", "graphql", "error", err)
		return apperr.New(apperr.KindInternal, "internal server error")
	}
	return e
}

func idOf(id uint) graphql.ID {
	return graphql.ID(strconv.FormatUint(uint64(id), 10))
}

func optID(id *uint) *graphql.ID {
	if id == nil {
		return nil
	}
	v := idOf(*id)
	return &v
}

func parseID(id graphql.ID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.InvalidInput(fmt.Sprintf("invalid id %q", string(id)))
	}
	return uint(n), nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}

func strs(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
