package graph

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasWriteOperation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"shorthand query", `{ stateMachine { from } }`, false},
		{"named query", `query Q { stateMachine { from } }`, false},
		{"mutation", `mutation { login(email: "a", password: "b") { token } }`, true},
		{"subscription", `subscription { newDeliveryRequest { id } }`, true},
		{"second definition", `query A { me { id } } mutation B { logout }`, true},
		{"keyword in string argument", `{ restaurants(search: "mutation") { id } }`, false},
		{"keyword in block string", `{ restaurants(search: """subscription""") { id } }`, false},
		{"keyword in comment", "# mutation\n{ me { id } }", false},
		{"keyword as field alias", `{ mutation: me { id } }`, false},
		{"fragment", `fragment subscription on Order { id } { me { id } }`, false},
		{"variable default", `query Q($s: String = "mutation") { restaurants(search: $s) { id } }`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasWriteOperation(tt.doc))
		})
	}
}

func TestHTTPHandlerGET(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPHandler(env.schema)

	get := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape(query), nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := get(`{ restaurants(search: "mutation") { name } }`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"restaurants":[]}}`, w.Body.String())

	w = get(`{ restaurants(search: "burger") { name } }`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"restaurants":[{"name":"Burger Barn"}]}}`, w.Body.String())

	w = get(`mutation { requestPasswordReset(email: "customer@starides.test") }`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
