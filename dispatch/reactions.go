package dispatch

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/l7aromeo/meocord/registry"
)

// HandleReactionAdd fans a reaction-add event out to matching reaction
// handlers.
func (d *Dispatcher) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r == nil || r.MessageReaction == nil {
		return
	}
	d.handleReaction(s, r.MessageReaction, registry.ReactionAdd)
}

// HandleReactionRemove fans a reaction-remove event out to matching reaction
// handlers.
func (d *Dispatcher) HandleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r == nil || r.MessageReaction == nil {
		return
	}
	d.handleReaction(s, r.MessageReaction, registry.ReactionRemove)
}

func (d *Dispatcher) handleReaction(s *discordgo.Session, r *discordgo.MessageReaction, action registry.ReactionAction) {
	// Ignore the bot reacting to itself.
	if s != nil && s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	trace := uuid.NewString()
	ctx := context.Background()
	emoji := r.Emoji.APIName()

	// The gateway payload carries IDs only. Fetch the full message once so
	// every handler sees the same complete view.
	var msg *discordgo.Message
	for _, ctrl := range d.controllers {
		handlers := ctrl.ReactionHandlers()
		if len(handlers) == 0 {
			continue
		}
		if msg == nil {
			var err error
			msg, err = d.fetchMessage(s, r.ChannelID, r.MessageID)
			if err != nil {
				d.log.Warn().Err(err).
					Str("trace", trace).
					Str("channel", r.ChannelID).
					Str("message", r.MessageID).
					Msg("reaction target fetch failed")
				return
			}
		}
		if err := ctrl.EnsureInit(ctx, d.container); err != nil {
			d.log.Error().Err(err).Str("trace", trace).Str("controller", ctrl.Name()).Msg("controller init failed")
			continue
		}
		for _, h := range handlers {
			if h.Filter != "" && h.Filter != emoji {
				continue
			}
			ev := &registry.Event{
				Kind:           registry.EventReaction,
				Category:       registry.CategoryMessage,
				Session:        s,
				Reaction:       r,
				Action:         action,
				ReactedMessage: msg,
				Params:         map[string]string{},
				TraceID:        trace,
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
				d.log.Error().Err(err).
					Str("trace", trace).
					Str("controller", ctrl.Name()).
					Str("emoji", emoji).
					Stringer("action", action).
					Msg("reaction handler error")
			}
		}
	}
}
