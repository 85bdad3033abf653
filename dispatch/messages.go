package dispatch

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/l7aromeo/meocord/registry"
)

// HandleMessage fans a created message out to every matching message handler
// on every controller. Unlike interactions there is no single winner; each
// handler sees the event and failures stay isolated per handler.
func (d *Dispatcher) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	trace := uuid.NewString()
	ctx := context.Background()

	for _, ctrl := range d.controllers {
		handlers := ctrl.MessageHandlers()
		if len(handlers) == 0 {
			continue
		}
		if err := ctrl.EnsureInit(ctx, d.container); err != nil {
			d.log.Error().Err(err).Str("trace", trace).Str("controller", ctrl.Name()).Msg("controller init failed")
			continue
		}
		for _, h := range handlers {
			if h.Filter != "" && h.Filter != content {
				continue
			}
			// Fresh event per handler so one mutating its params cannot
			// bleed into the next.
			ev := &registry.Event{
				Kind:     registry.EventMessage,
				Category: registry.CategoryMessage,
				Session:  s,
				Message:  m,
				Params:   map[string]string{},
				TraceID:  trace,
			}
			ok, err := d.runGuards(ctx, ctrl, nil, ev)
			if err != nil {
				d.log.Error().Err(err).Str("trace", trace).Str("controller", ctrl.Name()).Msg("guard chain failed")
				continue
			}
			if !ok {
				continue
			}
			if err := d.invoke(ctx, h.Handler, ev); err != nil {
				d.log.Error().Err(err).Str("trace", trace).Str("controller", ctrl.Name()).Msg("message handler error")
			}
		}
	}
}
