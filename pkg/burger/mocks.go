package burger

import (
	"net/http"
	"strings"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
	"github.com/thesyncim/burger-e2e/pkg/scenario"
)

// Route aliases of the standard mocks.
const (
	AliasIngredients = "getIngredients"
	AliasLogin       = "login"
	AliasUser        = "getUser"
	AliasOrder       = "postOrder"
)

// Mocks returns the backend routes every scenario installs, rooted at
// apiBase ("/api" for a same-origin API or an absolute URL).
func Mocks(apiBase string) []scenario.RouteMock {
	api := strings.TrimRight(apiBase, "/")
	return []scenario.RouteMock{
		{Alias: AliasIngredients, Method: http.MethodGet, Pattern: api + "/ingredients", Responder: scenario.Fixture(fixture.Ingredients)},
		{Alias: AliasLogin, Method: http.MethodPost, Pattern: api + "/auth/login", Responder: scenario.Fixture(fixture.User)},
		{Alias: AliasUser, Method: http.MethodGet, Pattern: api + "/auth/user", Responder: scenario.Fixture(fixture.User)},
		{Alias: AliasOrder, Method: http.MethodPost, Pattern: api + "/orders", Responder: OrderResponder()},
	}
}

// orderRequest is the body the application posts to /orders.
type orderRequest struct {
	Ingredients []string `json:"ingredients"`
}

// OrderResponder replies to an order with orderResponse.json, or with 400
// when the posted body names no ingredients, as the real backend does.
func OrderResponder() scenario.Responder {
	return scenario.ResponderFunc(func(req scenario.Request, fixtures scenario.FixtureSource) (scenario.Response, error) {
		var body orderRequest
		if err := req.JSON(&body); err != nil || len(body.Ingredients) == 0 {
			return scenario.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "Ingredient ids must be provided",
			}).Respond(req, fixtures)
		}
		return scenario.FixtureResponse(fixtures, fixture.OrderResponse, http.StatusOK)
	})
}
