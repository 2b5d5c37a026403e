// Package burger describes the burger builder as the scenarios see it: typed
// ingredient ids, the locator table keyed by them, the standard route mocks
// and the scenario suite.
package burger

import (
	"fmt"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
	"github.com/thesyncim/burger-e2e/pkg/scenario"
)

// IngredientID is the backend-assigned id of an ingredient.
type IngredientID string

// Ingredients the scenarios click on.
const (
	KraterBun      IngredientID = "643d69a5c3f7b9001cfa093c"
	FluorescentBun IngredientID = "643d69a5c3f7b9001cfa093d"
	AntarianSauce  IngredientID = "643d69a5c3f7b9001cfa0945"
	FalleanFruit   IngredientID = "643d69a5c3f7b9001cfa0947"
	MartianCrystal IngredientID = "643d69a5c3f7b9001cfa0948"
)

func (id IngredientID) String() string {
	return string(id)
}

// Category is the ingredient type reported by the backend.
type Category string

// Categories of the catalogue.
const (
	Bun   Category = "bun"
	Main  Category = "main"
	Sauce Category = "sauce"
)

// Singleton reports whether the cart holds at most one ingredient of the
// category, so adding another replaces the current one.
func (c Category) Singleton() bool {
	return c == Bun || c == Main
}

// Ingredient is the part of a catalogue entry scenarios assert on.
type Ingredient struct {
	ID       IngredientID
	Name     string
	Category Category
}

// Catalogue indexes the ingredients fixture by id.
type Catalogue struct {
	byID  map[IngredientID]Ingredient
	order []IngredientID
}

// NewCatalogue builds a catalogue from the ingredients fixture.
func NewCatalogue(r fixture.IngredientsResponse) (*Catalogue, error) {
	c := &Catalogue{byID: make(map[IngredientID]Ingredient, len(r.Data))}
	for _, ing := range r.Data {
		id := IngredientID(ing.ID)
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate ingredient %s", id)
		}
		cat := Category(ing.Type)
		switch cat {
		case Bun, Main, Sauce:
		default:
			return nil, fmt.Errorf("ingredient %s: unknown type %q", id, ing.Type)
		}
		c.byID[id] = Ingredient{ID: id, Name: ing.Name, Category: cat}
		c.order = append(c.order, id)
	}
	return c, nil
}

// Get returns the ingredient with the given id.
func (c *Catalogue) Get(id IngredientID) (Ingredient, error) {
	ing, ok := c.byID[id]
	if !ok {
		return Ingredient{}, fmt.Errorf("ingredient %s is not in the catalogue", id)
	}
	return ing, nil
}

// IDs returns every ingredient id in fixture order.
func (c *Catalogue) IDs() []IngredientID {
	out := make([]IngredientID, len(c.order))
	copy(out, c.order)
	return out
}

// Card groups the locators of one ingredient card.
type Card struct {
	Root    scenario.Locator
	Add     scenario.Locator
	Details scenario.Locator
	Counter scenario.Locator
}

func cardFor(id IngredientID) Card {
	root := scenario.DataCy(id.String()).Named("ingredient " + id.String())
	return Card{
		Root:    root,
		Add:     root.Child("button"),
		Details: root.Child("a"),
		Counter: root.Find(".counter"),
	}
}

// Locators maps ingredient ids to the locators of their cards.
type Locators map[IngredientID]Card

// NewLocators builds the locator table for the catalogue.
func NewLocators(c *Catalogue) Locators {
	l := make(Locators, len(c.order))
	for _, id := range c.order {
		l[id] = cardFor(id)
	}
	return l
}

// Card returns the locators of id, failing for ids the catalogue lacks.
func (l Locators) Card(id IngredientID) (Card, error) {
	card, ok := l[id]
	if !ok {
		return Card{}, fmt.Errorf("no card locator for ingredient %s", id)
	}
	return card, nil
}

// Page-level locators of the selector contract.
var (
	Cart        = scenario.CSS(".constructor").Named("cart")
	OrderButton = scenario.DataCy("order-button")
	Modals      = scenario.ID("modals")
	ModalClose  = Modals.Find("button").Named("modal close button")
	Overlay     = scenario.DataCy("overlay")
	LoginButton = scenario.DataCy("login-button")
	UserName    = scenario.DataCy("user-name")
)

// IDAttr is the attribute cart items and the details modal carry the
// ingredient id in.
const IDAttr = "data-id"
