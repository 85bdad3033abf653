package registry

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/l7aromeo/meocord/pattern"
)

// Handler is a registered handler method, captured as a function value at
// registration time. Dispatch is a direct call through this reference; there
// is no name-based method lookup at runtime.
type Handler func(ctx context.Context, ev *Event) error

// HandlerMetadata describes one registered command handler. Created once at
// registration, immutable afterwards.
type HandlerMetadata struct {
	// Identifier is the literal command name or the identifier pattern the
	// handler was registered under.
	Identifier string

	Category Category
	Handler  Handler

	// Builder is the platform command definition, present only for slash and
	// context-menu commands that must be registered with Discord.
	Builder *discordgo.ApplicationCommand

	// Pattern is the compiled identifier matcher. Set for button, select-menu
	// and modal handlers; nil for slash and context-menu handlers, which match
	// by exact name.
	Pattern *pattern.Compiled

	// Guards run before Handler, in declaration order, after any
	// controller-level guards.
	Guards []GuardSpec
}

// MessageHandlerEntry is one plain-message listener. An empty Filter is the
// catch-all; a non-empty Filter fires only when it equals the trimmed message
// content.
type MessageHandlerEntry struct {
	Filter  string
	Handler Handler
}

// ReactionHandlerEntry is one reaction listener. An empty Filter is the
// catch-all; otherwise Filter is compared against the emoji's API name.
type ReactionHandlerEntry struct {
	Filter  string
	Handler Handler
}
