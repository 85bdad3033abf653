package registry

import "context"

// Guard is an authorization check run before a handler executes. Returning
// false vetoes the handler without being an error; a returned error is a
// guard failure and is reported separately from rejection.
type Guard interface {
	CanActivate(ctx context.Context, ev *Event) (bool, error)
}

// Parameterized is implemented by guards that accept per-registration
// parameters. SetParams is called on a fresh instance before CanActivate, so
// parameters never leak between concurrent invocations.
type Parameterized interface {
	SetParams(params map[string]any)
}

// GuardSpec names one guard in a chain: either a container key (resolved per
// invocation, so register guards with transient scope) or a New constructor.
// Exactly one of Provide and New must be set.
type GuardSpec struct {
	Provide string
	New     func() Guard

	// Params, when non-nil, is copied onto the resolved instance via its
	// Parameterized hook.
	Params map[string]any
}
