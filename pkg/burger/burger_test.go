package burger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
	"github.com/thesyncim/burger-e2e/pkg/scenario"
)

func testCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	ing, err := fixture.Embedded().Ingredients()
	require.NoError(t, err)
	c, err := NewCatalogue(ing)
	require.NoError(t, err)
	return c
}

func TestCatalogue(t *testing.T) {
	c := testCatalogue(t)
	assert.Len(t, c.IDs(), 11)

	tests := []struct {
		id       IngredientID
		category Category
	}{
		{KraterBun, Bun},
		{FluorescentBun, Bun},
		{AntarianSauce, Sauce},
		{FalleanFruit, Main},
		{MartianCrystal, Main},
	}
	for _, tt := range tests {
		ing, err := c.Get(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.category, ing.Category, tt.id)
	}

	_, err := c.Get("643d69a5c3f7b9001cfa0000")
	assert.Error(t, err)
}

func TestCatalogueRejectsBadFixtures(t *testing.T) {
	_, err := NewCatalogue(fixture.IngredientsResponse{Data: []fixture.Ingredient{
		{ID: "a", Name: "A", Type: "bun"},
		{ID: "a", Name: "A", Type: "bun"},
	}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewCatalogue(fixture.IngredientsResponse{Data: []fixture.Ingredient{
		{ID: "a", Name: "A", Type: "dessert"},
	}})
	assert.ErrorContains(t, err, "unknown type")
}

func TestCategorySingleton(t *testing.T) {
	assert.True(t, Bun.Singleton())
	assert.True(t, Main.Singleton())
	assert.False(t, Sauce.Singleton())
}

func TestLocators(t *testing.T) {
	l := NewLocators(testCatalogue(t))
	assert.Len(t, l, 11)

	card, err := l.Card(MartianCrystal)
	require.NoError(t, err)
	assert.Equal(t, `[data-cy="643d69a5c3f7b9001cfa0948"] > button`, card.Add.Selector())
	assert.Equal(t, `[data-cy="643d69a5c3f7b9001cfa0948"] > a`, card.Details.Selector())
	assert.Equal(t, `[data-cy="643d69a5c3f7b9001cfa0948"] .counter`, card.Counter.Selector())
	assert.Equal(t, "ingredient 643d69a5c3f7b9001cfa0948 > button", card.Add.String())

	_, err = l.Card("unknown")
	assert.Error(t, err)
}

func TestPageLocators(t *testing.T) {
	assert.Equal(t, ".constructor", Cart.Selector())
	assert.Equal(t, `[data-cy="order-button"]`, OrderButton.Selector())
	assert.Equal(t, `[data-cy="overlay"]`, Overlay.Selector())
	assert.Equal(t, `[id="modals"] button`, ModalClose.Selector())
	assert.Equal(t, "#modals", Modals.String())
}

func TestMocks(t *testing.T) {
	fixtures := fixture.Embedded()
	set, err := scenario.NewMockSet(fixtures, Mocks("/api/")...)
	require.NoError(t, err)

	tests := []struct {
		method string
		url    string
		alias  string
	}{
		{http.MethodGet, "http://localhost:4000/api/ingredients", AliasIngredients},
		{http.MethodPost, "http://localhost:4000/api/auth/login", AliasLogin},
		{http.MethodGet, "http://localhost:4000/api/auth/user", AliasUser},
		{http.MethodPost, "http://localhost:4000/api/orders", AliasOrder},
	}
	for _, tt := range tests {
		m, ok := set.Match(tt.method, tt.url)
		require.True(t, ok, tt.url)
		assert.Equal(t, tt.alias, m.Alias)
	}

	_, ok := set.Match(http.MethodGet, "http://localhost:4000/api/orders")
	assert.False(t, ok)
}

func TestMocksAbsoluteAPIBase(t *testing.T) {
	set, err := scenario.NewMockSet(fixture.Embedded(), Mocks("https://norma.nomoreparties.space/api")...)
	require.NoError(t, err)

	_, ok := set.Match(http.MethodGet, "https://norma.nomoreparties.space/api/ingredients")
	assert.True(t, ok)
	_, ok = set.Match(http.MethodGet, "http://localhost:4000/api/ingredients")
	assert.False(t, ok)
}

func TestOrderResponder(t *testing.T) {
	fixtures := fixture.Embedded()
	r := OrderResponder()

	resp, err := r.Respond(scenario.Request{Method: "POST", Body: `{"ingredients":["643d69a5c3f7b9001cfa093d"]}`}, fixtures)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	var body fixture.OrderResponseBody
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, 48352, *body.Order.Number)

	for _, reqBody := range []string{"", `{"ingredients":[]}`, `not json`} {
		resp, err := r.Respond(scenario.Request{Method: "POST", Body: reqBody}, fixtures)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status, reqBody)
		assert.Contains(t, string(resp.Body), `"success":false`)
	}
}

func TestExpectSuccess(t *testing.T) {
	rec := func(body string) *scenario.Interception {
		return &scenario.Interception{Alias: AliasLogin, StatusCode: http.StatusOK, Body: gson.NewFrom(body), RawBody: []byte(body)}
	}

	assert.NoError(t, expectSuccess(rec(`{"success":true,"user":{"name":"Test User"}}`)))

	for _, body := range []string{`{"success":false}`, `{"user":{}}`, `{"success":"true"}`} {
		err := expectSuccess(rec(body))
		var ae *scenario.AssertionError
		require.True(t, errors.As(err, &ae), body)
		assert.Equal(t, "@login body", ae.Step)
		assert.Equal(t, body, ae.Actual)
	}
}

func TestNewSuite(t *testing.T) {
	suite, err := NewSuite("/api", fixture.Embedded())
	require.NoError(t, err)

	assert.Equal(t, "/", suite.Entry)
	assert.Equal(t, []string{AliasIngredients}, suite.WaitFor)

	var names []string
	plans := suite.Plans()
	for _, p := range plans {
		names = append(names, p.Name)
		assert.NotNil(t, p.Run, p.Name)
	}
	assert.Equal(t, []string{
		"Ingredient Management in Constructor/should increment ingredient counter",
		"Ingredient Management in Constructor/Burger Assembly Process/should add main ingredient and sauce",
		"Ingredient Management in Constructor/Burger Assembly Process/should add sauce before main ingredient",
		"Ingredient Management in Constructor/Ingredient Combinations/should replace ingredient in empty constructor",
		"Ingredient Management in Constructor/Ingredient Combinations/should replace ingredient with existing components",
		"Ingredient Management in Constructor/Ingredient Combinations/should replace bun",
		"Order Processing/should create and confirm order",
		"Ingredient Modal Windows/should display ingredient details",
		"Ingredient Modal Windows/should close modal with button",
		"Ingredient Modal Windows/should close modal by overlay click",
		"Ingredient Modal Windows/should close modal with ESC key",
		"Authentication/should log in and keep tokens",
		"Authentication/Seeded Session/should load the user profile",
	}, names)

	for _, p := range plans {
		seeded := strings.HasPrefix(p.Name, "Order Processing/") || strings.HasPrefix(p.Name, "Authentication/Seeded Session/")
		if seeded {
			assert.Equal(t, AuthenticatedSession, p.Session, p.Name)
		} else {
			assert.True(t, p.Session.Empty(), p.Name)
		}
	}
}

func TestNewSuiteAcceptsOrderWithoutNumber(t *testing.T) {
	fsys := fstest.MapFS{
		fixture.OrderResponse: {Data: []byte(`{"success":true,"order":{}}`)},
	}
	for _, name := range []string{fixture.Ingredients, fixture.User} {
		data, err := fixture.Embedded().Bytes(name)
		require.NoError(t, err)
		fsys[name] = &fstest.MapFile{Data: data}
	}

	suite, err := NewSuite("/api", fixture.FS(fsys))
	require.NoError(t, err)
	assert.Len(t, suite.Plans(), 13)
}

func TestNewSuiteRejectsIncompleteCatalogue(t *testing.T) {
	fsys := fstest.MapFS{
		fixture.Ingredients: {Data: []byte(`{"success":true,"data":[{"_id":"x","name":"Bun","type":"bun"}]}`)},
	}
	for _, name := range []string{fixture.User, fixture.OrderResponse} {
		data, err := fixture.Embedded().Bytes(name)
		require.NoError(t, err)
		fsys[name] = &fstest.MapFile{Data: data}
	}

	_, err := NewSuite("/api", fixture.FS(fsys))
	assert.ErrorContains(t, err, string(KraterBun))
}
