// Package scenario runs browser-driven UI scenarios against a web application
// whose backend is replaced by route mocks.
//
// A scenario installs mocks, navigates to the entry point, waits for the
// initial data fetch, drives the page through clicks and key presses and
// asserts DOM and storage state. Requests triggered by an interaction are
// captured as interception records which the scenario can wait on and
// inspect before asserting the resulting UI.
//
// Running scenarios:
//
//	pages, _ := browser.New(browser.DefaultConfig())
//	runner, _ := scenario.NewRunner(pages,
//		scenario.WithBaseURL("http://localhost:4000"),
//		scenario.WithFixtures(fixture.Embedded()),
//	)
//	report := runner.Run(ctx, suite)
//	report.Print(os.Stdout)
//
// Each plan gets a fresh incognito browser context. Route mocks are installed
// before navigation through Rod's request hijacking; requests no mock matches
// continue to the network and are listed in failure reports. Assertions poll
// the DOM until they hold or their timeout elapses.
package scenario
