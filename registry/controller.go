package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/pattern"
)

// Controller groups related handler methods under one name. Controllers are
// immutable once built; the dispatcher scans them in registration order.
type Controller struct {
	name    string
	entries []*HandlerMetadata
	byIdent map[string][]*HandlerMetadata

	messageHandlers  []MessageHandlerEntry
	reactionHandlers []ReactionHandlerEntry

	guards []GuardSpec

	init     func(ctx context.Context, c *di.Container) error
	initOnce sync.Once
	initErr  error
}

// Name returns the controller's registration name.
func (c *Controller) Name() string { return c.name }

// Entries returns all command handler metadata in registration order.
func (c *Controller) Entries() []*HandlerMetadata { return c.entries }

// Lookup returns the metadata entries registered under identifier. Multiple
// entries may share one identifier; callers pick the first whose category
// matches the inbound event.
func (c *Controller) Lookup(identifier string) []*HandlerMetadata {
	return c.byIdent[identifier]
}

// MessageHandlers returns message listeners, keyword-filtered entries before
// the unfiltered catch-all.
func (c *Controller) MessageHandlers() []MessageHandlerEntry { return c.messageHandlers }

// ReactionHandlers returns reaction listeners, emoji-filtered entries before
// the unfiltered catch-all.
func (c *Controller) ReactionHandlers() []ReactionHandlerEntry { return c.reactionHandlers }

// Guards returns the controller-level guard chain, run before every handler's
// own guards.
func (c *Controller) Guards() []GuardSpec { return c.guards }

// EnsureInit runs the controller's init hook on first dispatch, memoizing the
// result for the rest of the process. Subsequent calls return the same error
// (or nil) without re-running the hook.
func (c *Controller) EnsureInit(ctx context.Context, container *di.Container) error {
	if c.init == nil {
		return nil
	}
	c.initOnce.Do(func() {
		c.initErr = c.init(ctx, container)
	})
	return c.initErr
}

// Builder assembles a Controller. Errors accumulate and surface from Build,
// so registration failures abort before the process serves events.
type Builder struct {
	c   *Controller
	err error
}

// NewController starts a controller definition.
func NewController(name string) *Builder {
	b := &Builder{c: &Controller{
		name:    name,
		byIdent: make(map[string][]*HandlerMetadata),
	}}
	if name == "" {
		b.err = errors.New("registry: controller name is empty")
	}
	return b
}

// Use appends controller-level guards, run before every handler in this
// controller.
func (b *Builder) Use(guards ...GuardSpec) *Builder {
	b.c.guards = append(b.c.guards, guards...)
	return b
}

// OnInit registers a hook run lazily on the first dispatch to this
// controller, typically to resolve the controller's dependencies from the
// container.
func (b *Builder) OnInit(fn func(ctx context.Context, c *di.Container) error) *Builder {
	b.c.init = fn
	return b
}

func (b *Builder) appendEntry(md *HandlerMetadata) {
	b.c.entries = append(b.c.entries, md)
	b.c.byIdent[md.Identifier] = append(b.c.byIdent[md.Identifier], md)
}

// Slash registers a slash-command handler. The definition's name is the
// command identifier and the definition itself is published to Discord during
// command sync.
func (b *Builder) Slash(def *discordgo.ApplicationCommand, h Handler, guards ...GuardSpec) *Builder {
	if b.err != nil {
		return b
	}
	if def == nil || def.Name == "" {
		b.err = fmt.Errorf("registry: controller %q: slash definition needs a name", b.c.name)
		return b
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	b.appendEntry(&HandlerMetadata{
		Identifier: def.Name,
		Category:   CategorySlash,
		Handler:    h,
		Builder:    def,
		Guards:     guards,
	})
	return b
}

// UserMenu registers a user context-menu handler.
func (b *Builder) UserMenu(name string, h Handler, guards ...GuardSpec) *Builder {
	return b.contextMenu(name, discordgo.UserApplicationCommand, h, guards)
}

// MessageMenu registers a message context-menu handler.
func (b *Builder) MessageMenu(name string, h Handler, guards ...GuardSpec) *Builder {
	return b.contextMenu(name, discordgo.MessageApplicationCommand, h, guards)
}

func (b *Builder) contextMenu(name string, typ discordgo.ApplicationCommandType, h Handler, guards []GuardSpec) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("registry: controller %q: context menu needs a name", b.c.name)
		return b
	}
	b.appendEntry(&HandlerMetadata{
		Identifier: name,
		Category:   CategoryContextMenu,
		Handler:    h,
		Builder:    &discordgo.ApplicationCommand{Name: name, Type: typ},
		Guards:     guards,
	})
	return b
}

// Button registers a button handler under an identifier pattern such as
// "profile-{id}".
func (b *Builder) Button(pat string, h Handler, guards ...GuardSpec) *Builder {
	return b.patterned(pat, CategoryButton, h, guards)
}

// SelectMenu registers a select-menu handler under an identifier pattern.
func (b *Builder) SelectMenu(pat string, h Handler, guards ...GuardSpec) *Builder {
	return b.patterned(pat, CategorySelectMenu, h, guards)
}

// Modal registers a modal-submit handler under an identifier pattern.
func (b *Builder) Modal(pat string, h Handler, guards ...GuardSpec) *Builder {
	return b.patterned(pat, CategoryModalSubmit, h, guards)
}

func (b *Builder) patterned(pat string, cat Category, h Handler, guards []GuardSpec) *Builder {
	if b.err != nil {
		return b
	}
	compiled, err := pattern.Compile(pat)
	if err != nil {
		b.err = fmt.Errorf("registry: controller %q: %w", b.c.name, err)
		return b
	}
	b.appendEntry(&HandlerMetadata{
		Identifier: pat,
		Category:   cat,
		Handler:    h,
		Pattern:    compiled,
		Guards:     guards,
	})
	return b
}

// OnMessage registers a plain-message listener. An empty filter is the
// catch-all; otherwise the handler fires when the trimmed message content
// equals filter exactly.
func (b *Builder) OnMessage(filter string, h Handler) *Builder {
	b.c.messageHandlers = append(b.c.messageHandlers, MessageHandlerEntry{Filter: filter, Handler: h})
	return b
}

// OnReaction registers a reaction listener. An empty filter is the catch-all;
// otherwise filter is matched against the emoji's API name.
func (b *Builder) OnReaction(emoji string, h Handler) *Builder {
	b.c.reactionHandlers = append(b.c.reactionHandlers, ReactionHandlerEntry{Filter: emoji, Handler: h})
	return b
}

// Build finalizes the controller. Message and reaction listeners are ordered
// so filtered entries run before the catch-all; relative order is otherwise
// preserved.
func (b *Builder) Build() (*Controller, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, md := range b.c.entries {
		if md.Handler == nil {
			return nil, fmt.Errorf("registry: controller %q: %q has no handler", b.c.name, md.Identifier)
		}
	}
	sort.SliceStable(b.c.messageHandlers, func(i, j int) bool {
		return b.c.messageHandlers[i].Filter != "" && b.c.messageHandlers[j].Filter == ""
	})
	sort.SliceStable(b.c.reactionHandlers, func(i, j int) bool {
		return b.c.reactionHandlers[i].Filter != "" && b.c.reactionHandlers[j].Filter == ""
	})
	return b.c, nil
}

// MustBuild is Build but panics on error. Registration failures are fatal at
// startup, never at dispatch time.
func (b *Builder) MustBuild() *Controller {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
