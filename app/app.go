// Package app owns the Discord session and the process lifecycle: it wires
// the logger, container, controllers and dispatcher together, opens the
// gateway connection, and tears everything down once on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/dispatch"
	"github.com/l7aromeo/meocord/logger"
	"github.com/l7aromeo/meocord/registry"
)

// ErrNoContainer is returned by New when a controller references a container
// key but no container was supplied.
var ErrNoContainer = errors.New("app: controllers reference container keys but no container is bound")

// App is one bot process.
type App struct {
	cfg       Config
	log       zerolog.Logger
	container *di.Container
	disp      *dispatch.Dispatcher

	session *discordgo.Session
	cron    *cron.Cron

	syncOnce     sync.Once
	shutdownOnce sync.Once
	done         chan struct{}
}

// Option configures an App.
type Option func(*App)

// WithLogger replaces the logger built from Config.LogLevel/LogFile.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithContainer supplies the dependency container used by controller init
// hooks and container-resolved guards.
func WithContainer(c *di.Container) Option {
	return func(a *App) { a.container = c }
}

// WithEmbedColor sets the color of the dispatcher's fallback reply embeds.
func WithEmbedColor(color int) Option {
	return func(a *App) { a.disp.SetReplier(dispatch.EmbedReplier{Color: color}) }
}

// New wires an application from its controllers. It validates the container
// graph and the controllers' container references up front, so a broken
// composition fails at startup rather than on first dispatch.
func New(cfg Config, controllers []*registry.Controller, opts ...Option) (*App, error) {
	a := &App{
		cfg:  cfg,
		log:  logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}),
		done: make(chan struct{}),
		disp: dispatch.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.container != nil {
		if err := a.container.Validate(); err != nil {
			return nil, fmt.Errorf("app: container graph: %w", err)
		}
	} else if key, ok := firstContainerKey(controllers); ok {
		return nil, fmt.Errorf("%w (first reference: %q)", ErrNoContainer, key)
	}

	a.disp.Configure(
		dispatch.WithLogger(a.log),
		dispatch.WithContainer(a.container),
	)
	a.disp.Register(controllers...)
	return a, nil
}

// firstContainerKey finds a guard spec that resolves through the container.
func firstContainerKey(controllers []*registry.Controller) (string, bool) {
	for _, ctrl := range controllers {
		for _, g := range ctrl.Guards() {
			if g.Provide != "" {
				return g.Provide, true
			}
		}
		for _, e := range ctrl.Entries() {
			for _, g := range e.Guards {
				if g.Provide != "" {
					return g.Provide, true
				}
			}
		}
	}
	return "", false
}

// Dispatcher exposes the wired dispatcher, mainly for command sync tooling.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.disp }

// Run opens the gateway session and blocks until the context is cancelled, a
// SIGINT/SIGTERM arrives, or Shutdown is called. It always tears down through
// Shutdown and returns nil on a clean stop.
func (a *App) Run(ctx context.Context) error {
	s, err := discordgo.New("Bot " + a.cfg.Token)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	a.session = s

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentMessageContent

	a.disp.Bind(s)
	s.AddHandler(a.onReady)

	if err := s.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	a.log.Info().Msg("gateway connected")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-ctx.Done():
		a.log.Info().Msg("context cancelled, shutting down")
	case rcv := <-sig:
		a.log.Info().Str("signal", rcv.String()).Msg("signal received, shutting down")
	case <-a.done:
	}

	a.Shutdown()
	return nil
}

// onReady fires on every gateway (re)connect; startup work runs once.
func (a *App) onReady(s *discordgo.Session, r *discordgo.Ready) {
	a.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("ready")
	a.syncOnce.Do(func() {
		if a.cfg.SyncCommands {
			if err := a.disp.SyncCommands(s, a.cfg.GuildID); err != nil {
				a.log.Error().Err(err).Msg("command sync failed")
			}
		} else {
			a.log.Info().Msg("command sync disabled")
		}
		a.startPresence()
	})
}

// Shutdown stops the app exactly once: presence cron, event subscriptions,
// gateway session, then a fixed grace period for in-flight handlers. Safe to
// call concurrently and more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.cron != nil {
			a.cron.Stop()
		}
		a.disp.Unbind()
		if a.session != nil {
			if err := a.session.Close(); err != nil {
				a.log.Warn().Err(err).Msg("session close failed")
			}
		}
		if a.cfg.ShutdownGrace > 0 {
			time.Sleep(a.cfg.ShutdownGrace)
		}
		a.log.Info().Msg("shutdown complete")
		close(a.done)
	})
}
