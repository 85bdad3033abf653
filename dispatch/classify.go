package dispatch

import (
	"github.com/bwmarrin/discordgo"

	"github.com/l7aromeo/meocord/registry"
)

// classify maps a platform interaction to its handler category. The
// discriminant is set once here; everything downstream switches on the
// returned category instead of re-inspecting the payload.
func classify(i *discordgo.InteractionCreate) (registry.Category, bool) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().CommandType {
		case discordgo.UserApplicationCommand, discordgo.MessageApplicationCommand:
			return registry.CategoryContextMenu, true
		default:
			return registry.CategorySlash, true
		}
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().ComponentType == discordgo.ButtonComponent {
			return registry.CategoryButton, true
		}
		// Everything else (string, user, role, mentionable, channel selects)
		// is a select menu.
		return registry.CategorySelectMenu, true
	case discordgo.InteractionModalSubmit:
		return registry.CategoryModalSubmit, true
	}
	return 0, false
}

// customID extracts the component custom identifier for pattern-matched
// categories.
func customID(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	}
	return ""
}
