package guard

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/l7aromeo/meocord/registry"
)

// PermissionNames maps permission bits to readable names, for rejection
// messages and logs.
var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionViewAuditLogs:          "View Audit Logs",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionModerateMembers:        "Moderate Members",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
}

// UserPermission requires the acting member to hold every bit in Required.
// Parameterizable via {"permissions": int64}, so one transient registration
// can serve different thresholds per handler.
type UserPermission struct {
	Required int64
}

func (g *UserPermission) SetParams(params map[string]any) {
	switch v := params["permissions"].(type) {
	case int64:
		g.Required = v
	case int:
		g.Required = int64(v)
	}
}

func (g *UserPermission) CanActivate(_ context.Context, ev *registry.Event) (bool, error) {
	if g.Required == 0 {
		return true, nil
	}
	if ev.Kind != registry.EventInteraction || ev.Interaction == nil || ev.Interaction.Member == nil {
		return false, nil
	}
	perms := ev.Interaction.Member.Permissions
	return perms&g.Required == g.Required, nil
}

// Missing returns the names of required permissions the member lacks.
func (g *UserPermission) Missing(memberPerms int64) []string {
	var missing []string
	for bit, name := range PermissionNames {
		if g.Required&bit != 0 && memberPerms&bit == 0 {
			missing = append(missing, name)
		}
	}
	return missing
}
