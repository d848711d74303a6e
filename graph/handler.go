package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

// NewHTTPHandler serves POST through relay and read-only GET queries.
func NewHTTPHandler(schema *graphql.Schema) http.Handler {
	post := &relay.Handler{Schema: schema}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			post.ServeHTTP(w, r)
			return
		}
		q := r.URL.Query()
		query := q.Get("query")
		if query == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		if hasWriteOperation(query) {
			http.Error(w, "mutations and subscriptions require POST", http.StatusMethodNotAllowed)
			return
		}
		var vars map[string]interface{}
		if raw := q.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &vars); err != nil {
				http.Error(w, "variables must be a JSON object", http.StatusBadRequest)
				return
			}
		}
		resp := schema.Exec(r.Context(), query, q.Get("operationName"), vars)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

type subscriptionRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// SubscriptionHandler runs one GraphQL subscription per websocket. The client
// sends a single {query, variables, operationName} frame; results stream back
// as JSON text frames until either side closes.
type SubscriptionHandler struct {
	schema   *graphql.Schema
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewSubscriptionHandler(schema *graphql.Schema, allowedOrigins []string, log *slog.Logger) *SubscriptionHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &SubscriptionHandler{
		schema: schema,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

const wsWriteTimeout = 10 * time.Second

func (h *SubscriptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "action", "subscription", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var req subscriptionRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.closeWith(conn, websocket.CloseUnsupportedData, "expected a JSON subscription request")
		return
	}

	// the client sends nothing else; a read error means it went away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	results, err := h.schema.Subscribe(ctx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		h.closeWith(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				h.closeWith(conn, websocket.CloseNormalClosure, "")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(res); err != nil {
				h.log.Debug("websocket write failed", "action", "subscription", "error", err)
				return
			}
		}
	}
}

func (h *SubscriptionHandler) closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
