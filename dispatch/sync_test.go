package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l7aromeo/meocord/registry"
)

type fakeAPI struct {
	remote      []*discordgo.ApplicationCommand
	overwritten []*discordgo.ApplicationCommand
	overwriteGu string
	fail        bool
}

func (f *fakeAPI) User(string, ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: "app-1"}, nil
}

func (f *fakeAPI) ApplicationCommands(string, string, ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, nil
}

func (f *fakeAPI) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if f.fail {
		return nil, errors.New("http 502")
	}
	f.overwritten = cmds
	f.overwriteGu = guildID
	return cmds, nil
}

func TestCollectDefinitionsSkipsPatternEntries(t *testing.T) {
	h := func(context.Context, *registry.Event) error { return nil }
	a := registry.NewController("a").
		Slash(&discordgo.ApplicationCommand{Name: "ping", Description: "x"}, h).
		Button("page-{n}", h).
		MustBuild()
	b := registry.NewController("b").
		UserMenu("inspect", h).
		MustBuild()

	d := New()
	d.Register(a, b)

	defs := d.collectDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "ping", defs[0].Name)
	assert.Equal(t, "inspect", defs[1].Name)
	assert.Equal(t, discordgo.UserApplicationCommand, defs[1].Type)
}

func TestSyncCommandsBulkOverwrites(t *testing.T) {
	h := func(context.Context, *registry.Event) error { return nil }
	ctrl := registry.NewController("a").
		Slash(&discordgo.ApplicationCommand{Name: "ping", Description: "x"}, h).
		MustBuild()

	d := New()
	d.Register(ctrl)

	api := &fakeAPI{}
	require.NoError(t, d.syncCommands(api, "app-1", "guild-1"))
	require.Len(t, api.overwritten, 1)
	assert.Equal(t, "ping", api.overwritten[0].Name)
	assert.Equal(t, "guild-1", api.overwriteGu)
}

func TestSyncCommandsWrapsAPIError(t *testing.T) {
	d := New()
	err := d.syncCommands(&fakeAPI{fail: true}, "app-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk overwrite")
}

func TestDiffCommands(t *testing.T) {
	remote := []*discordgo.ApplicationCommand{
		{Name: "keep", Description: "same", Type: discordgo.ChatApplicationCommand},
		{Name: "drift", Description: "old text", Type: discordgo.ChatApplicationCommand},
		{Name: "gone", Description: "x", Type: discordgo.ChatApplicationCommand},
	}
	local := []*discordgo.ApplicationCommand{
		{Name: "keep", Description: "same", Type: discordgo.ChatApplicationCommand},
		{Name: "drift", Description: "new text", Type: discordgo.ChatApplicationCommand},
		{Name: "fresh", Description: "x", Type: discordgo.ChatApplicationCommand},
	}

	added, changed, removed := diffCommands(remote, local)
	assert.Equal(t, []string{"fresh"}, added)
	assert.Equal(t, []string{"drift"}, changed)
	assert.Equal(t, []string{"gone"}, removed)
}

func TestHashCommandIgnoresServerFields(t *testing.T) {
	a := &discordgo.ApplicationCommand{ID: "1", Version: "7", Name: "ping", Description: "x"}
	b := &discordgo.ApplicationCommand{ID: "2", Version: "9", Name: "ping", Description: "x"}
	assert.Equal(t, hashCommand(a), hashCommand(b))

	c := &discordgo.ApplicationCommand{Name: "ping", Description: "different"}
	assert.NotEqual(t, hashCommand(a), hashCommand(c))
}

func TestHashCommandOptionOrderInsensitive(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "mute", Description: "x", Options: []*discordgo.ApplicationCommandOption{
		{Name: "minutes", Description: "m", Type: discordgo.ApplicationCommandOptionInteger},
		{Name: "reason", Description: "r", Type: discordgo.ApplicationCommandOptionString},
	}}
	b := &discordgo.ApplicationCommand{Name: "mute", Description: "x", Options: []*discordgo.ApplicationCommandOption{
		{Name: "reason", Description: "r", Type: discordgo.ApplicationCommandOptionString},
		{Name: "minutes", Description: "m", Type: discordgo.ApplicationCommandOptionInteger},
	}}
	assert.Equal(t, hashCommand(a), hashCommand(b))
}
