// Package guard runs authorization chains in front of handler methods. Guard
// instances come from the dependency container (or a constructor) per
// invocation; register container-provided guards with transient scope so
// per-call parameters never leak between concurrent events.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/registry"
)

// ErrMalformedGuard is returned when a spec resolves to something that does
// not implement the guard contract, or when the GuardSpec itself is unusable.
var ErrMalformedGuard = errors.New("guard: malformed guard")

// RunChain executes specs in declaration order. The first guard that returns
// false short-circuits the chain: no later guard runs and the caller must not
// invoke the handler. A guard error propagates as-is so callers can tell
// "guard said no" from "guard broke".
func RunChain(ctx context.Context, c *di.Container, ev *registry.Event, specs []registry.GuardSpec) (bool, error) {
	for _, spec := range specs {
		g, err := resolve(c, spec)
		if err != nil {
			return false, err
		}
		if len(spec.Params) > 0 {
			p, ok := g.(registry.Parameterized)
			if !ok {
				return false, fmt.Errorf("%w: %T has params but no SetParams", ErrMalformedGuard, g)
			}
			params := make(map[string]any, len(spec.Params))
			for k, v := range spec.Params {
				params[k] = v
			}
			p.SetParams(params)
		}
		ok, err := g.CanActivate(ctx, ev)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func resolve(c *di.Container, spec registry.GuardSpec) (registry.Guard, error) {
	switch {
	case spec.New != nil:
		g := spec.New()
		if g == nil {
			return nil, fmt.Errorf("%w: constructor returned nil", ErrMalformedGuard)
		}
		return g, nil
	case spec.Provide != "":
		if c == nil {
			return nil, fmt.Errorf("%w: %q needs a container but none is bound", ErrMalformedGuard, spec.Provide)
		}
		inst, err := c.Resolve(spec.Provide)
		if err != nil {
			return nil, err
		}
		g, ok := inst.(registry.Guard)
		if !ok {
			return nil, fmt.Errorf("%w: %q resolved to %T, which has no CanActivate", ErrMalformedGuard, spec.Provide, inst)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: spec has neither Provide nor New", ErrMalformedGuard)
	}
}
