// Command examplebot is a small bot built on the framework. It exercises a
// slash command with options, a button with a pattern-captured parameter, a
// modal, guards, and message/reaction listeners.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/l7aromeo/meocord/app"
	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/dispatch"
	"github.com/l7aromeo/meocord/guard"
	"github.com/l7aromeo/meocord/logger"
	"github.com/l7aromeo/meocord/registry"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})

	container := di.New()
	container.MustProvide("greeter", di.Provider{
		Scope: di.Singleton,
		Build: func(*di.Container) (any, error) {
			return &greeter{started: time.Now()}, nil
		},
	})
	// Rate limiting has to share its buckets across invocations, so the guard
	// lives in the container as a singleton.
	container.MustProvide("guards.clicklimit", di.Provider{
		Scope: di.Singleton,
		Build: func(*di.Container) (any, error) {
			return guard.NewRateLimit(2*time.Second, 3), nil
		},
	})

	application, err := app.New(cfg,
		[]*registry.Controller{greetController(container), activityController()},
		app.WithLogger(log),
		app.WithContainer(container),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
}

// greeter is the controller's dependency, resolved from the container on
// first dispatch.
type greeter struct {
	started time.Time
}

func (g *greeter) Greeting(name string) string {
	return fmt.Sprintf("Hello %s! I have been up since %s.", name, g.started.Format(time.Kitchen))
}

func greetController(container *di.Container) *registry.Controller {
	var g *greeter

	guildOnly := registry.GuardSpec{New: func() registry.Guard { return guard.GuildOnly{} }}
	manageMessages := registry.GuardSpec{
		New:    func() registry.Guard { return &guard.UserPermission{} },
		Params: map[string]any{"permissions": discordgo.PermissionManageMessages},
	}
	clickLimit := registry.GuardSpec{Provide: "guards.clicklimit"}

	return registry.NewController("greet").
		OnInit(func(ctx context.Context, c *di.Container) error {
			inst, err := c.Resolve("greeter")
			if err != nil {
				return err
			}
			g = inst.(*greeter)
			return nil
		}).
		Slash(&discordgo.ApplicationCommand{
			Name:        "greet",
			Description: "Greet a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Who to greet",
					Required:    true,
				},
			},
		}, func(ctx context.Context, ev *registry.Event) error {
			return dispatch.Respond(ev.Session, ev.Interaction, g.Greeting(ev.Params["name"]))
		}).
		Button("profile-{id}", func(ctx context.Context, ev *registry.Event) error {
			return dispatch.RespondEphemeral(ev.Session, ev.Interaction,
				"Showing profile "+ev.Params["id"])
		}, clickLimit).
		Modal("feedback-{topic}", func(ctx context.Context, ev *registry.Event) error {
			return dispatch.RespondEphemeral(ev.Session, ev.Interaction,
				"Thanks for the feedback on "+ev.Params["topic"])
		}).
		UserMenu("Greet This User", func(ctx context.Context, ev *registry.Event) error {
			target := ev.Interaction.ApplicationCommandData().TargetID
			return dispatch.Respond(ev.Session, ev.Interaction, g.Greeting("<@"+target+">"))
		}, guildOnly, manageMessages).
		MustBuild()
}

func activityController() *registry.Controller {
	return registry.NewController("activity").
		OnMessage("!ping", func(ctx context.Context, ev *registry.Event) error {
			_, err := ev.Session.ChannelMessageSend(ev.Message.ChannelID, "pong")
			return err
		}).
		OnReaction("⭐", func(ctx context.Context, ev *registry.Event) error {
			if ev.Action != registry.ReactionAdd {
				return nil
			}
			_, err := ev.Session.ChannelMessageSend(ev.Reaction.ChannelID,
				fmt.Sprintf("<@%s> starred a message by %s", ev.Reaction.UserID, ev.ReactedMessage.Author.Username))
			return err
		}).
		MustBuild()
}
