//go:build e2e

// Package e2e runs the burger builder scenarios in a real browser.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chrome browser (auto-downloaded by Rod if not present)
// and are intended for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - Rod for browser automation (Chrome DevTools Protocol)
//   - the burger-app server for the application under test
//   - route mocks from pkg/burger for every API call
//
// Test isolation:
// Each test starts its own server on a random port and launches its own
// browser instance. Every scenario runs in a fresh incognito context.
package e2e
