package dispatch

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// SessionUser is the slice of the Discord session that command sync needs.
// Narrowed to an interface so sync can be tested without a gateway.
type SessionUser interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// SyncCommands pushes every builder-declared application command to Discord
// in one bulk overwrite. The overwrite replaces the full remote set, so
// commands removed from the controllers disappear remotely as well. Pass a
// guildID for instant guild-scoped registration, or "" for global.
func (d *Dispatcher) SyncCommands(s *discordgo.Session, guildID string) error {
	appID := ""
	if s.State != nil && s.State.User != nil {
		appID = s.State.User.ID
	}
	if appID == "" {
		u, err := s.User("@me")
		if err != nil {
			return fmt.Errorf("resolve application id: %w", err)
		}
		appID = u.ID
	}
	return d.syncCommands(s, appID, guildID)
}

func (d *Dispatcher) syncCommands(s SessionUser, appID, guildID string) error {
	defs := d.collectDefinitions()

	// Best effort diff against the remote set, for the logs only. The bulk
	// overwrite below is authoritative either way.
	if remote, err := s.ApplicationCommands(appID, guildID); err == nil {
		added, changed, removed := diffCommands(remote, defs)
		d.log.Info().
			Str("guild", guildID).
			Int("total", len(defs)).
			Strs("added", added).
			Strs("changed", changed).
			Strs("removed", removed).
			Msg("syncing application commands")
	}

	if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
		return fmt.Errorf("bulk overwrite %d commands: %w", len(defs), err)
	}
	return nil
}

// collectDefinitions gathers application command builders from all
// controllers in registration order. Pattern-matched entries (buttons,
// selects, modals) carry no builder and are skipped.
func (d *Dispatcher) collectDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, ctrl := range d.controllers {
		for _, e := range ctrl.Entries() {
			if e.Builder != nil {
				defs = append(defs, e.Builder)
			}
		}
	}
	return defs
}

// diffCommands compares the remote command set against the local definitions
// by name and content hash.
func diffCommands(remote, local []*discordgo.ApplicationCommand) (added, changed, removed []string) {
	remoteHash := make(map[string]string, len(remote))
	for _, c := range remote {
		remoteHash[c.Name] = hashCommand(c)
	}
	localNames := make(map[string]struct{}, len(local))
	for _, c := range local {
		localNames[c.Name] = struct{}{}
		h, seen := remoteHash[c.Name]
		switch {
		case !seen:
			added = append(added, c.Name)
		case h != hashCommand(c):
			changed = append(changed, c.Name)
		}
	}
	for _, c := range remote {
		if _, ok := localNames[c.Name]; !ok {
			removed = append(removed, c.Name)
		}
	}
	sort.Strings(added)
	sort.Strings(changed)
	sort.Strings(removed)
	return added, changed, removed
}

// hashCommand returns a deterministic SHA-1 of a command's stable fields, so
// the diff ignores server-assigned IDs and version counters.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	out := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]interface{}{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
