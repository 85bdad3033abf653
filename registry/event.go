// Package registry holds the event model and per-controller handler metadata.
// Controllers are assembled with an explicit builder at the composition root;
// the dispatcher consumes the resulting metadata maps at runtime.
package registry

import (
	"github.com/bwmarrin/discordgo"
)

// Category classifies what kind of user action a handler is registered for.
type Category int

const (
	CategorySlash Category = iota
	CategoryButton
	CategorySelectMenu
	CategoryContextMenu
	CategoryModalSubmit
	CategoryMessage
)

func (c Category) String() string {
	switch c {
	case CategorySlash:
		return "slash"
	case CategoryButton:
		return "button"
	case CategorySelectMenu:
		return "select_menu"
	case CategoryContextMenu:
		return "context_menu"
	case CategoryModalSubmit:
		return "modal_submit"
	case CategoryMessage:
		return "message"
	}
	return "unknown"
}

// EventKind is the top-level discriminant of an inbound event.
type EventKind int

const (
	EventInteraction EventKind = iota
	EventMessage
	EventReaction
)

// ReactionAction distinguishes reaction-added from reaction-removed.
type ReactionAction int

const (
	ReactionAdd ReactionAction = iota
	ReactionRemove
)

func (a ReactionAction) String() string {
	if a == ReactionRemove {
		return "remove"
	}
	return "add"
}

// Event is the tagged union passed to handlers and guards. Kind selects which
// payload pointer is set; exactly one of Interaction, Message, Reaction is
// non-nil.
type Event struct {
	Kind     EventKind
	Category Category

	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Message     *discordgo.MessageCreate
	Reaction    *discordgo.MessageReaction

	// Action is set for Kind == EventReaction.
	Action ReactionAction

	// ReactedMessage is the fully fetched message a reaction targets, so
	// handlers never see partial reaction data.
	ReactedMessage *discordgo.Message

	// Params holds dynamic parameters: named captures from a matched
	// identifier pattern, or stringified typed options of a slash command.
	Params map[string]string

	// TraceID correlates every log line produced while dispatching this event.
	TraceID string
}

// GuildID returns the originating guild, or "" for direct messages.
func (e *Event) GuildID() string {
	switch e.Kind {
	case EventInteraction:
		if e.Interaction != nil {
			return e.Interaction.GuildID
		}
	case EventMessage:
		if e.Message != nil {
			return e.Message.GuildID
		}
	case EventReaction:
		if e.Reaction != nil {
			return e.Reaction.GuildID
		}
	}
	return ""
}

// UserID returns the acting user's ID, or "" when it cannot be determined.
func (e *Event) UserID() string {
	switch e.Kind {
	case EventInteraction:
		if u := e.User(); u != nil {
			return u.ID
		}
	case EventMessage:
		if e.Message != nil && e.Message.Author != nil {
			return e.Message.Author.ID
		}
	case EventReaction:
		if e.Reaction != nil {
			return e.Reaction.UserID
		}
	}
	return ""
}

// User returns the acting user for interaction and message events.
// Interactions carry the user either on Member (guild) or User (DM).
func (e *Event) User() *discordgo.User {
	switch e.Kind {
	case EventInteraction:
		if e.Interaction == nil {
			return nil
		}
		if e.Interaction.Member != nil && e.Interaction.Member.User != nil {
			return e.Interaction.Member.User
		}
		return e.Interaction.User
	case EventMessage:
		if e.Message != nil {
			return e.Message.Author
		}
	}
	return nil
}

// Repliable reports whether the generic fallback replies can be delivered for
// this event. Interactions and messages can be answered; bare reactions
// cannot.
func (e *Event) Repliable() bool {
	switch e.Kind {
	case EventInteraction:
		return e.Interaction != nil
	case EventMessage:
		return e.Message != nil
	}
	return false
}
