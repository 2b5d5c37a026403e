package burger

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/input"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
	"github.com/thesyncim/burger-e2e/pkg/scenario"
)

// Seeded credentials of the authenticated groups.
const (
	AccessToken  = "test_access_token_789"
	RefreshToken = "test_refresh_token_456"

	AccessTokenCookie = "accessToken"
	RefreshTokenKey   = "refreshToken"
)

const (
	orderWaitTimeout   = 15 * time.Second
	orderNumberTimeout = 10 * time.Second
)

// AuthenticatedSession is the state a logged-in user leaves in the browser.
var AuthenticatedSession = scenario.SessionState{
	Cookies:      map[string]string{AccessTokenCookie: AccessToken},
	LocalStorage: map[string]string{RefreshTokenKey: RefreshToken},
}

// builder holds what the scenario bodies look up: ingredient names and card
// locators by id, and the fixture user.
type builder struct {
	catalogue *Catalogue
	cards     Locators
	user      fixture.UserResponse
}

// NewSuite builds the burger builder suite for an application whose API is
// rooted at apiBase, using fixtures for both the mocks and the expectations.
func NewSuite(apiBase string, fixtures *fixture.Store) (scenario.Suite, error) {
	if err := fixtures.ValidateExpectations(); err != nil {
		return scenario.Suite{}, err
	}
	ing, err := fixtures.Ingredients()
	if err != nil {
		return scenario.Suite{}, err
	}
	cat, err := NewCatalogue(ing)
	if err != nil {
		return scenario.Suite{}, err
	}
	for _, id := range []IngredientID{KraterBun, FluorescentBun, AntarianSauce, FalleanFruit, MartianCrystal} {
		if _, err := cat.Get(id); err != nil {
			return scenario.Suite{}, fmt.Errorf("fixture %s: %w", fixture.Ingredients, err)
		}
	}
	user, err := fixtures.User()
	if err != nil {
		return scenario.Suite{}, err
	}

	b := &builder{catalogue: cat, cards: NewLocators(cat), user: user}
	return scenario.Suite{
		Name:    "Burger constructor",
		Entry:   "/",
		Mocks:   Mocks(apiBase),
		WaitFor: []string{AliasIngredients},
		Groups: []scenario.Group{
			b.ingredientGroup(),
			b.orderGroup(),
			b.modalGroup(),
			b.authGroup(),
		},
	}, nil
}

func (b *builder) card(id IngredientID) scenario.Locator {
	card, err := b.cards.Card(id)
	if err != nil {
		panic(err) // ids are checked against the catalogue in NewSuite
	}
	return card.Add
}

func (b *builder) add(ctx context.Context, s *scenario.Session, id IngredientID) error {
	return s.Click(ctx, b.card(id))
}

func (b *builder) name(id IngredientID) string {
	ing, err := b.catalogue.Get(id)
	if err != nil {
		panic(err) // ids are checked against the catalogue in NewSuite
	}
	return ing.Name
}

// addAndExpect asserts the cart lacks id, adds it and asserts the cart now
// shows it.
func (b *builder) addAndExpect(ctx context.Context, s *scenario.Session, id IngredientID) error {
	if err := s.NotContains(ctx, Cart, b.name(id)); err != nil {
		return err
	}
	if err := b.add(ctx, s, id); err != nil {
		return err
	}
	return s.Contains(ctx, Cart, b.name(id))
}

// expectReplaced asserts that adding next removed prev from the cart.
func (b *builder) expectReplaced(ctx context.Context, s *scenario.Session, prev, next IngredientID) error {
	if err := s.Contains(ctx, Cart, b.name(next)); err != nil {
		return err
	}
	if err := s.NotContains(ctx, Cart, b.name(prev)); err != nil {
		return err
	}
	return s.InOrder(ctx, Cart, IDAttr, []string{next.String()})
}

func (b *builder) ingredientGroup() scenario.Group {
	crystal := b.name(MartianCrystal)
	crystalCounter := b.cards[MartianCrystal].Counter

	return scenario.Group{
		Name: "Ingredient Management in Constructor",
		Scenarios: []scenario.Scenario{{
			Name: "should increment ingredient counter",
			Run: func(ctx context.Context, s *scenario.Session) error {
				if err := s.NotContains(ctx, Cart, crystal); err != nil {
					return err
				}
				if err := b.add(ctx, s, MartianCrystal); err != nil {
					return err
				}
				if err := s.Contains(ctx, Cart, crystal); err != nil {
					return err
				}
				return s.Contains(ctx, crystalCounter, "1")
			},
		}},
		Groups: []scenario.Group{{
			Name: "Burger Assembly Process",
			Scenarios: []scenario.Scenario{{
				Name: "should add main ingredient and sauce",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := b.addAndExpect(ctx, s, MartianCrystal); err != nil {
						return err
					}
					if err := b.addAndExpect(ctx, s, AntarianSauce); err != nil {
						return err
					}
					return s.InOrder(ctx, Cart, IDAttr, []string{MartianCrystal.String(), AntarianSauce.String()})
				},
			}, {
				Name: "should add sauce before main ingredient",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := b.addAndExpect(ctx, s, AntarianSauce); err != nil {
						return err
					}
					if err := b.addAndExpect(ctx, s, MartianCrystal); err != nil {
						return err
					}
					return s.InOrder(ctx, Cart, IDAttr, []string{AntarianSauce.String(), MartianCrystal.String()})
				},
			}},
		}, {
			Name: "Ingredient Combinations",
			Scenarios: []scenario.Scenario{{
				Name: "should replace ingredient in empty constructor",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := b.addAndExpect(ctx, s, MartianCrystal); err != nil {
						return err
					}
					if err := b.add(ctx, s, FalleanFruit); err != nil {
						return err
					}
					return b.expectReplaced(ctx, s, MartianCrystal, FalleanFruit)
				},
			}, {
				Name: "should replace ingredient with existing components",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := b.addAndExpect(ctx, s, MartianCrystal); err != nil {
						return err
					}
					if err := b.addAndExpect(ctx, s, AntarianSauce); err != nil {
						return err
					}
					if err := b.add(ctx, s, FalleanFruit); err != nil {
						return err
					}
					if err := b.expectReplaced(ctx, s, MartianCrystal, FalleanFruit); err != nil {
						return err
					}
					if err := s.Contains(ctx, Cart, b.name(AntarianSauce)); err != nil {
						return err
					}
					return s.InOrder(ctx, Cart, IDAttr, []string{AntarianSauce.String(), FalleanFruit.String()})
				},
			}, {
				Name: "should replace bun",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := b.addAndExpect(ctx, s, KraterBun); err != nil {
						return err
					}
					if err := b.add(ctx, s, FluorescentBun); err != nil {
						return err
					}
					return b.expectReplaced(ctx, s, KraterBun, FluorescentBun)
				},
			}},
		}},
	}
}

func (b *builder) orderGroup() scenario.Group {
	return scenario.Group{
		Name:    "Order Processing",
		Session: AuthenticatedSession,
		Scenarios: []scenario.Scenario{{
			Name: "should create and confirm order",
			Run:  b.createOrder,
		}},
	}
}

func (b *builder) createOrder(ctx context.Context, s *scenario.Session) error {
	for _, id := range []IngredientID{FluorescentBun, MartianCrystal, FalleanFruit} {
		if err := b.add(ctx, s, id); err != nil {
			return err
		}
	}

	if err := s.Visible(ctx, OrderButton); err != nil {
		return err
	}
	if err := s.Enabled(ctx, OrderButton); err != nil {
		return err
	}
	if err := s.Click(ctx, OrderButton); err != nil {
		return err
	}

	rec, err := s.Wait(ctx, AliasOrder, orderWaitTimeout)
	if err != nil {
		return err
	}
	if err := scenario.Expect(rec.StatusCode == http.StatusOK,
		"@"+AliasOrder+" status", strconv.Itoa(http.StatusOK), strconv.Itoa(rec.StatusCode)); err != nil {
		return err
	}
	auth := rec.Request.HeaderValue("Authorization")
	if err := scenario.Expect(auth == "Bearer "+AccessToken,
		"@"+AliasOrder+" authorization", strconv.Quote("Bearer "+AccessToken), strconv.Quote(auth)); err != nil {
		return err
	}
	if _, err := rec.Field("order"); err != nil {
		return bodyFailure(err)
	}
	number, err := rec.Number("order", "number")
	if err != nil {
		return bodyFailure(err)
	}

	if err := s.TextVisible(ctx, strconv.FormatInt(number, 10), scenario.Within(orderNumberTimeout)); err != nil {
		return err
	}
	return s.ChildCount(ctx, Cart, 0)
}

// expectSuccess asserts the intercepted body reports success: true.
func expectSuccess(rec *scenario.Interception) error {
	v, err := rec.Field("success")
	return scenario.Expect(err == nil && v.Bool(), "@"+rec.Alias+" body", "success: true", string(rec.RawBody))
}

func bodyFailure(err error) error {
	return &scenario.AssertionError{
		Step:     "@" + AliasOrder + " body",
		Expected: "order.number to be a number",
		Actual:   "malformed body",
		Err:      err,
	}
}

func (b *builder) modalGroup() scenario.Group {
	details := b.cards[MartianCrystal].Details

	// openDetails asserts the modal starts empty, opens the ingredient details
	// and asserts the modal now has content.
	openDetails := func(ctx context.Context, s *scenario.Session) error {
		if err := s.Empty(ctx, Modals); err != nil {
			return err
		}
		if err := s.Click(ctx, details); err != nil {
			return err
		}
		return s.NotEmpty(ctx, Modals)
	}

	closeWith := func(close func(ctx context.Context, s *scenario.Session) error) scenario.Step {
		return func(ctx context.Context, s *scenario.Session) error {
			if err := openDetails(ctx, s); err != nil {
				return err
			}
			if err := close(ctx, s); err != nil {
				return err
			}
			return s.Empty(ctx, Modals)
		}
	}

	return scenario.Group{
		Name: "Ingredient Modal Windows",
		Scenarios: []scenario.Scenario{{
			Name: "should display ingredient details",
			Run: func(ctx context.Context, s *scenario.Session) error {
				if err := openDetails(ctx, s); err != nil {
					return err
				}
				if err := s.Contains(ctx, Modals, b.name(MartianCrystal)); err != nil {
					return err
				}
				return s.InOrder(ctx, Modals, IDAttr, []string{MartianCrystal.String()})
			},
		}, {
			Name: "should close modal with button",
			Run: closeWith(func(ctx context.Context, s *scenario.Session) error {
				return s.Click(ctx, ModalClose)
			}),
		}, {
			Name: "should close modal by overlay click",
			Run: closeWith(func(ctx context.Context, s *scenario.Session) error {
				return s.ForceClick(ctx, Overlay)
			}),
		}, {
			Name: "should close modal with ESC key",
			Run: closeWith(func(ctx context.Context, s *scenario.Session) error {
				return s.Press(ctx, input.Escape)
			}),
		}},
	}
}

func (b *builder) authGroup() scenario.Group {
	name := b.user.User.Name

	return scenario.Group{
		Name: "Authentication",
		Scenarios: []scenario.Scenario{{
			Name: "should log in and keep tokens",
			Run: func(ctx context.Context, s *scenario.Session) error {
				if err := s.Click(ctx, LoginButton); err != nil {
					return err
				}
				rec, err := s.Wait(ctx, AliasLogin)
				if err != nil {
					return err
				}
				if err := scenario.Expect(rec.StatusCode == http.StatusOK,
					"@"+AliasLogin+" status", strconv.Itoa(http.StatusOK), strconv.Itoa(rec.StatusCode)); err != nil {
					return err
				}
				if err := expectSuccess(rec); err != nil {
					return err
				}
				if err := s.Contains(ctx, UserName, name); err != nil {
					return err
				}
				return s.StorageHas(ctx, scenario.SessionState{
					LocalStorage: map[string]string{RefreshTokenKey: b.user.RefreshToken},
				})
			},
		}},
		Groups: []scenario.Group{{
			Name:    "Seeded Session",
			Session: AuthenticatedSession,
			Scenarios: []scenario.Scenario{{
				Name: "should load the user profile",
				Run: func(ctx context.Context, s *scenario.Session) error {
					if err := s.Visit(ctx, "/"); err != nil {
						return err
					}
					rec, err := s.Wait(ctx, AliasUser)
					if err != nil {
						return err
					}
					auth := rec.Request.HeaderValue("Authorization")
					if err := scenario.Expect(auth == "Bearer "+AccessToken,
						"@"+AliasUser+" authorization", strconv.Quote("Bearer "+AccessToken), strconv.Quote(auth)); err != nil {
						return err
					}
					return s.Contains(ctx, UserName, name)
				},
			}},
		}},
	}
}
