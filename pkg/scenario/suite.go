package scenario

import (
	"context"
	"strings"
)

// Step is a scenario body: interactions and assertions against a session.
type Step func(ctx context.Context, s *Session) error

// Scenario is one independent test case.
type Scenario struct {
	Name  string
	Mocks []RouteMock
	Run   Step
}

// Group is a set of scenarios sharing mocks and session state. The state is
// seeded before each scenario of the group and removed after it.
type Group struct {
	Name      string
	Mocks     []RouteMock
	Session   SessionState
	Scenarios []Scenario
	Groups    []Group
}

// Suite is the root of a scenario tree. Every scenario visits Entry with the
// suite mocks installed and waits for the WaitFor aliases before its own
// steps run.
type Suite struct {
	Name      string
	Entry     string
	Mocks     []RouteMock
	WaitFor   []string
	Scenarios []Scenario
	Groups    []Group
}

// Plan is the explicit configuration of one scenario run: every mock to
// install, the state to seed and the body, resolved from the suite tree.
type Plan struct {
	Name    string
	Entry   string
	Mocks   []RouteMock
	WaitFor []string
	Session SessionState
	Run     Step
}

// Plans flattens the suite into one plan per scenario in declaration order.
// Top-level scenarios come first, then groups depth first. Inner mocks
// override outer ones with the same alias and inner session entries override
// outer ones with the same key.
func (s Suite) Plans() []Plan {
	base := Plan{Entry: s.Entry, WaitFor: s.WaitFor, Mocks: s.Mocks}
	var out []Plan
	out = appendScenarios(out, base, nil, s.Scenarios)
	for _, g := range s.Groups {
		out = appendGroup(out, base, nil, g)
	}
	return out
}

func appendGroup(out []Plan, parent Plan, path []string, g Group) []Plan {
	p := parent
	p.Mocks = concatMocks(parent.Mocks, g.Mocks)
	p.Session = mergeState(parent.Session, g.Session)
	path = append(append([]string(nil), path...), g.Name)

	out = appendScenarios(out, p, path, g.Scenarios)
	for _, child := range g.Groups {
		out = appendGroup(out, p, path, child)
	}
	return out
}

func appendScenarios(out []Plan, parent Plan, path []string, scenarios []Scenario) []Plan {
	for _, sc := range scenarios {
		p := parent
		p.Name = strings.Join(append(append([]string(nil), path...), sc.Name), "/")
		p.Mocks = concatMocks(parent.Mocks, sc.Mocks)
		p.Run = sc.Run
		out = append(out, p)
	}
	return out
}

func concatMocks(a, b []RouteMock) []RouteMock {
	out := make([]RouteMock, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func mergeState(a, b SessionState) SessionState {
	return SessionState{
		Cookies:      mergeMap(a.Cookies, b.Cookies),
		LocalStorage: mergeMap(a.LocalStorage, b.LocalStorage),
	}
}

func mergeMap(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
