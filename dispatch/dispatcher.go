// Package dispatch routes inbound Discord events to registered controller
// handlers. Controllers are scanned in registration order; interactions go to
// exactly one handler (first match wins), while messages and reactions fan
// out to every matching listener with failures isolated per invocation.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/guard"
	"github.com/l7aromeo/meocord/registry"
)

// DefaultEmbedColor is used by the fallback reply embeds.
const DefaultEmbedColor = 0x5865f2

// ErrUnknownCommand marks an interaction no registered handler matched. It
// never aborts dispatch; it is logged and answered with the not-found reply.
var ErrUnknownCommand = errors.New("dispatch: no handler matched")

// Dispatcher binds to a Discord session and routes its events.
type Dispatcher struct {
	controllers []*registry.Controller
	container   *di.Container
	log         zerolog.Logger
	replier     Replier

	// fetchMessage fully fetches a reaction's target message so handlers
	// never see partial data. Replaceable for tests.
	fetchMessage func(s *discordgo.Session, channelID, messageID string) (*discordgo.Message, error)

	mu     sync.Mutex
	detach []func()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatch logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithContainer sets the dependency container used to resolve guards and
// controller init hooks.
func WithContainer(c *di.Container) Option {
	return func(d *Dispatcher) { d.container = c }
}

// WithReplier replaces the fallback reply implementation.
func WithReplier(r Replier) Option {
	return func(d *Dispatcher) { d.replier = r }
}

// WithEmbedColor sets the color of the default fallback reply embeds.
func WithEmbedColor(color int) Option {
	return func(d *Dispatcher) { d.replier = EmbedReplier{Color: color} }
}

// WithMessageFetcher replaces how reaction target messages are fetched.
func WithMessageFetcher(fn func(s *discordgo.Session, channelID, messageID string) (*discordgo.Message, error)) Option {
	return func(d *Dispatcher) { d.fetchMessage = fn }
}

// Configure applies options to an existing dispatcher, before Bind.
func (d *Dispatcher) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(d)
	}
}

// SetReplier replaces the fallback reply implementation.
func (d *Dispatcher) SetReplier(r Replier) { d.replier = r }

// New returns a Dispatcher with no controllers registered.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:     zerolog.Nop(),
		replier: EmbedReplier{Color: DefaultEmbedColor},
		fetchMessage: func(s *discordgo.Session, channelID, messageID string) (*discordgo.Message, error) {
			return s.ChannelMessage(channelID, messageID)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register appends controllers. Registration order is scan order, so it is
// part of the dispatch contract: when two controllers declare the same slash
// command, the first registered wins.
func (d *Dispatcher) Register(ctrls ...*registry.Controller) {
	d.controllers = append(d.controllers, ctrls...)
}

// Controllers returns the registered controllers in scan order.
func (d *Dispatcher) Controllers() []*registry.Controller { return d.controllers }

// Bind subscribes the dispatcher to the session's interaction, message and
// reaction events. Call Unbind to remove the subscriptions during shutdown.
func (d *Dispatcher) Bind(s *discordgo.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detach = append(d.detach,
		s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) { d.HandleInteraction(s, i) }),
		s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) { d.HandleMessage(s, m) }),
		s.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) { d.HandleReactionAdd(s, r) }),
		s.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) { d.HandleReactionRemove(s, r) }),
	)
}

// Unbind removes all event subscriptions. Safe to call more than once.
func (d *Dispatcher) Unbind() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, remove := range d.detach {
		remove()
	}
	d.detach = nil
}

// invoke calls a handler, converting panics into errors so one bad handler
// never takes down the dispatcher.
func (d *Dispatcher) invoke(ctx context.Context, h registry.Handler, ev *registry.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, ev)
}

// runGuards evaluates the controller-level chain followed by any
// handler-level specs for one event.
func (d *Dispatcher) runGuards(ctx context.Context, ctrl *registry.Controller, entry []registry.GuardSpec, ev *registry.Event) (bool, error) {
	return guard.RunChain(ctx, d.container, ev, concatGuards(ctrl.Guards(), entry))
}

// concatGuards joins controller-level and handler-level guard chains without
// aliasing either slice.
func concatGuards(a, b []registry.GuardSpec) []registry.GuardSpec {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]registry.GuardSpec, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
