// Package mocks provides mock implementations for testing the session core.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the auth ports. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	gw := mocks.NewMockAuthGateway(ctrl)
//	gw.EXPECT().AuthenticateLearner(gomock.Any(), gomock.Any()).Return(token, nil)
package mocks

// Generate mock for AuthGateway interface from internal/ports.
// This creates MockAuthGateway with methods for all AuthGateway interface methods:
// AuthenticateLearner, AuthenticateInstructor
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_gateway_mock.go github.com/coursehub/coursehub-ui/internal/ports AuthGateway

// Generate mock for IdentityProvider interface from internal/ports.
// This creates MockIdentityProvider with methods for all IdentityProvider interface methods:
// SignIn
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_provider_mock.go github.com/coursehub/coursehub-ui/internal/ports IdentityProvider
