package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Session) error { return nil }

func TestSuitePlans(t *testing.T) {
	base := testMocks()
	override := RouteMock{Alias: "postOrder", Method: "POST", Pattern: "/api/orders", Responder: JSON(500, nil)}
	login := RouteMock{Alias: "login", Method: "POST", Pattern: "/api/auth/login", Responder: Fixture("user.json")}

	suite := Suite{
		Name:    "burger",
		Entry:   "/",
		Mocks:   base,
		WaitFor: []string{"getIngredients"},
		Groups: []Group{{
			Name:    "outer",
			Mocks:   []RouteMock{login},
			Session: SessionState{Cookies: map[string]string{"accessToken": "a"}},
			Scenarios: []Scenario{
				{Name: "first", Run: noop},
			},
			Groups: []Group{{
				Name:    "inner",
				Session: SessionState{Cookies: map[string]string{"accessToken": "b"}, LocalStorage: map[string]string{"refreshToken": "r"}},
				Scenarios: []Scenario{
					{Name: "second", Mocks: []RouteMock{override}, Run: noop},
				},
			}},
		}, {
			Name:      "plain",
			Scenarios: []Scenario{{Name: "third", Run: noop}},
		}},
		Scenarios: []Scenario{{Name: "top", Run: noop}},
	}

	plans := suite.Plans()
	require.Len(t, plans, 4)

	names := make([]string, len(plans))
	for i, p := range plans {
		names[i] = p.Name
		assert.Equal(t, "/", p.Entry)
		assert.Equal(t, []string{"getIngredients"}, p.WaitFor)
	}
	assert.Equal(t, []string{"top", "outer/first", "outer/inner/second", "plain/third"}, names)

	assert.True(t, plans[0].Session.Empty())
	assert.Len(t, plans[0].Mocks, 2)

	assert.Equal(t, map[string]string{"accessToken": "a"}, plans[1].Session.Cookies)
	assert.Len(t, plans[1].Mocks, 3)

	assert.Equal(t, map[string]string{"accessToken": "b"}, plans[2].Session.Cookies)
	assert.Equal(t, map[string]string{"refreshToken": "r"}, plans[2].Session.LocalStorage)
	assert.Len(t, plans[2].Mocks, 4, "overrides are resolved by the mock set, not here")

	ms, err := NewMockSet(testFixtures, plans[2].Mocks...)
	require.NoError(t, err)
	m, ok := ms.Match("POST", origin+"/api/orders")
	require.True(t, ok)
	resp, err := m.Responder.Respond(Request{}, testFixtures)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status)

	assert.True(t, plans[3].Session.Empty())
}

func TestSuitePlansDoNotAlias(t *testing.T) {
	suite := Suite{
		Mocks: testMocks()[:1],
		Groups: []Group{{
			Name:      "g",
			Mocks:     testMocks()[1:],
			Scenarios: []Scenario{{Name: "a"}, {Name: "b"}},
		}},
	}
	plans := suite.Plans()
	require.Len(t, plans, 2)

	plans[0].Mocks[0].Alias = "changed"
	assert.Equal(t, "getIngredients", plans[1].Mocks[0].Alias)
	assert.Equal(t, "getIngredients", suite.Mocks[0].Alias)
}
