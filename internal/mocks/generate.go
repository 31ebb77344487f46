// Package mocks provides mock implementations for testing the session
// resolution engine.
//
// Directory ports use go.uber.org/mock (gomock) for type-safe expectation
// APIs; the remaining engine ports have simple hand-written doubles under
// mocks/session. To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mocks for the directory lookup ports from internal/ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=directory_mocks.go github.com/fantastico/telesales-go/internal/ports PrimaryDirectory,SecondaryDirectory
