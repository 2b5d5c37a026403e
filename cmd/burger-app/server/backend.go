package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/pjscruggs/slogcp"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
)

// backend answers the application's API from the fixtures, so the app can be
// used by hand without route mocks. Orders are numbered upwards from the
// fixture's order number.
type backend struct {
	ingredients fixture.IngredientsResponse
	user        fixture.UserResponse
	order       fixture.OrderResponseBody

	mu   sync.Mutex
	next int
}

func newBackend(store *fixture.Store) (*backend, error) {
	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("backend fixtures: %w", err)
	}
	ing, err := store.Ingredients()
	if err != nil {
		return nil, err
	}
	user, err := store.User()
	if err != nil {
		return nil, err
	}
	order, err := store.Order()
	if err != nil {
		return nil, err
	}
	return &backend{
		ingredients: ing,
		user:        user,
		order:       order,
		next:        *order.Order.Number,
	}, nil
}

// Routes mounts the API routes.
func (b *backend) Routes(r chi.Router) {
	r.Get("/ingredients", b.getIngredients)
	r.Post("/auth/login", b.login)
	r.Group(func(r chi.Router) {
		r.Use(b.requireToken)
		r.Get("/auth/user", b.getUser)
		r.Post("/orders", b.postOrder)
	})
}

func (b *backend) getIngredients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.ingredients)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" {
		writeJSON(w, http.StatusUnauthorized, failure("email or password are incorrect"))
		return
	}
	slogcp.Logger(r.Context()).InfoContext(r.Context(), "login", "email", c.Email)
	writeJSON(w, http.StatusOK, b.user)
}

// requireToken rejects requests whose Authorization header does not carry the
// fixture user's access token.
func (b *backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != b.user.AccessToken {
			writeJSON(w, http.StatusForbidden, failure("You should be authorised"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *backend) getUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    b.user.User,
	})
}

type orderRequest struct {
	Ingredients []string `json:"ingredients"`
}

func (b *backend) postOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Ingredients) == 0 {
		writeJSON(w, http.StatusBadRequest, failure("Ingredient ids must be provided"))
		return
	}
	for _, id := range req.Ingredients {
		if _, ok := b.ingredients.Find(id); !ok {
			writeJSON(w, http.StatusBadRequest, failure("One or more ids provided are incorrect"))
			return
		}
	}

	b.mu.Lock()
	number := b.next
	b.next++
	b.mu.Unlock()

	resp := b.order
	resp.Order = fixture.Order{Number: &number}
	slogcp.Logger(r.Context()).InfoContext(r.Context(), "order placed",
		"number", number, "ingredients", len(req.Ingredients))
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"success": false, "message": msg}
}
