package dispatch

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/l7aromeo/meocord/registry"
)

// HandleInteraction routes one interaction to the first matching handler
// across all controllers. Exactly one handler runs; if none matches, the user
// gets a generic not-found reply.
func (d *Dispatcher) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cat, ok := classify(i)
	if !ok {
		d.log.Debug().Int("type", int(i.Type)).Msg("unhandled interaction type")
		return
	}

	ev := &registry.Event{
		Kind:        registry.EventInteraction,
		Category:    cat,
		Session:     s,
		Interaction: i,
		Params:      map[string]string{},
		TraceID:     uuid.NewString(),
	}
	log := d.log.With().
		Str("trace", ev.TraceID).
		Stringer("category", cat).
		Str("target", interactionTarget(cat, i)).
		Logger()

	ctx := context.Background()

	for _, ctrl := range d.controllers {
		md, params, mismatch := matchController(ctrl, cat, i)
		if mismatch != nil {
			// A handler exists under this identifier but for a different
			// category; keep scanning instead of aborting the dispatch.
			log.Warn().
				Str("controller", ctrl.Name()).
				Str("identifier", mismatch.Identifier).
				Stringer("declared", mismatch.Category).
				Msg("handler category does not match interaction subtype")
			continue
		}
		if md == nil {
			continue
		}

		if err := ctrl.EnsureInit(ctx, d.container); err != nil {
			log.Error().Err(err).Str("controller", ctrl.Name()).Msg("controller init failed")
			d.replyFailure(ev, log)
			return
		}

		for k, v := range params {
			ev.Params[k] = v
		}
		if cat == registry.CategorySlash {
			flattenOptions(i.ApplicationCommandData().Options, ev.Params)
		}

		ok, err := d.runGuards(ctx, ctrl, md.Guards, ev)
		if err != nil {
			log.Error().Err(err).Str("identifier", md.Identifier).Msg("guard chain failed")
			d.replyFailure(ev, log)
			return
		}
		if !ok {
			log.Debug().Str("identifier", md.Identifier).Msg("guard rejected")
			return
		}

		if err := d.invoke(ctx, md.Handler, ev); err != nil {
			log.Error().Err(err).Str("identifier", md.Identifier).Msg("handler error")
			d.replyFailure(ev, log)
		}
		return
	}

	log.Warn().Err(ErrUnknownCommand).Msg("no handler matched")
	if ev.Repliable() {
		if err := d.replier.NotFound(ev); err != nil {
			log.Warn().Err(err).Msg("not-found reply failed")
		}
	}
}

func (d *Dispatcher) replyFailure(ev *registry.Event, log zerolog.Logger) {
	if !ev.Repliable() {
		return
	}
	if err := d.replier.Failure(ev); err != nil {
		log.Warn().Err(err).Msg("failure reply failed")
	}
}

// matchController finds the handler for one controller. It returns either the
// matched metadata with its captured parameters, or the mismatched entry when
// something matched the identifier under the wrong category, or nothing.
func matchController(ctrl *registry.Controller, cat registry.Category, i *discordgo.InteractionCreate) (md *registry.HandlerMetadata, params map[string]string, mismatch *registry.HandlerMetadata) {
	switch cat {
	case registry.CategorySlash, registry.CategoryContextMenu:
		entries := ctrl.Lookup(i.ApplicationCommandData().Name)
		if len(entries) == 0 {
			return nil, nil, nil
		}
		// First entry whose category matches wins; later registrations under
		// the same name are overload entries for other categories.
		for _, e := range entries {
			if e.Category == cat {
				return e, nil, nil
			}
		}
		return nil, nil, entries[0]

	case registry.CategoryButton, registry.CategorySelectMenu, registry.CategoryModalSubmit:
		id := customID(i)
		// Scan every compiled pattern across all identifiers; first match
		// wins, then its declared category must agree with the event subtype.
		for _, e := range ctrl.Entries() {
			if e.Pattern == nil {
				continue
			}
			captured, ok := e.Pattern.Match(id)
			if !ok {
				continue
			}
			if e.Category != cat {
				return nil, nil, e
			}
			return e, captured, nil
		}
	}
	return nil, nil, nil
}

// flattenOptions copies a slash command's typed options into the dynamic
// parameter bag as strings, descending into subcommands. The chosen
// subcommand's name is exposed under "subcommand".
func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, params map[string]string) {
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			params["subcommand"] = o.Name
			flattenOptions(o.Options, params)
		default:
			params[o.Name] = fmt.Sprint(o.Value)
		}
	}
}

func interactionTarget(cat registry.Category, i *discordgo.InteractionCreate) string {
	switch cat {
	case registry.CategorySlash, registry.CategoryContextMenu:
		return i.ApplicationCommandData().Name
	default:
		return customID(i)
	}
}
