package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l7aromeo/meocord/di"
	"github.com/l7aromeo/meocord/registry"
)

type stubGuard struct {
	allow  bool
	err    error
	calls  *int
	params map[string]any
}

func (g *stubGuard) SetParams(params map[string]any) { g.params = params }

func (g *stubGuard) CanActivate(context.Context, *registry.Event) (bool, error) {
	if g.calls != nil {
		*g.calls++
	}
	return g.allow, g.err
}

func guildEvent(guildID string) *registry.Event {
	return &registry.Event{
		Kind: registry.EventInteraction,
		Interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			GuildID: guildID,
			Member:  &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		}},
	}
}

func TestRunChainShortCircuits(t *testing.T) {
	secondCalls := 0
	specs := []registry.GuardSpec{
		{New: func() registry.Guard { return &stubGuard{allow: false} }},
		{New: func() registry.Guard { return &stubGuard{allow: true, calls: &secondCalls} }},
	}

	ok, err := RunChain(context.Background(), nil, guildEvent("g"), specs)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, secondCalls, "a rejected chain must not run later guards")
}

func TestRunChainAllPass(t *testing.T) {
	specs := []registry.GuardSpec{
		{New: func() registry.Guard { return &stubGuard{allow: true} }},
		{New: func() registry.Guard { return &stubGuard{allow: true} }},
	}
	ok, err := RunChain(context.Background(), nil, guildEvent("g"), specs)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunChainPropagatesGuardError(t *testing.T) {
	boom := errors.New("boom")
	specs := []registry.GuardSpec{
		{New: func() registry.Guard { return &stubGuard{err: boom} }},
	}
	ok, err := RunChain(context.Background(), nil, guildEvent("g"), specs)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestRunChainMalformedResolution(t *testing.T) {
	c := di.New()
	c.MustProvide("notAGuard", di.Provider{
		Build: func(*di.Container) (any, error) { return "just a string", nil },
		Scope: di.Transient,
	})

	_, err := RunChain(context.Background(), c, guildEvent("g"), []registry.GuardSpec{{Provide: "notAGuard"}})
	assert.ErrorIs(t, err, ErrMalformedGuard)
}

func TestRunChainEmptySpec(t *testing.T) {
	_, err := RunChain(context.Background(), nil, guildEvent("g"), []registry.GuardSpec{{}})
	assert.ErrorIs(t, err, ErrMalformedGuard)
}

func TestRunChainParamsRequireHook(t *testing.T) {
	specs := []registry.GuardSpec{{
		New:    func() registry.Guard { return GuildOnly{} },
		Params: map[string]any{"x": 1},
	}}
	_, err := RunChain(context.Background(), nil, guildEvent("g"), specs)
	assert.ErrorIs(t, err, ErrMalformedGuard)
}

func TestRunChainParamsDoNotLeakAcrossResolutions(t *testing.T) {
	c := di.New()
	c.MustProvide("stub", di.Provider{
		Build: func(*di.Container) (any, error) { return &stubGuard{allow: true}, nil },
		Scope: di.Transient,
	})

	first := []registry.GuardSpec{{Provide: "stub", Params: map[string]any{"who": "alice"}}}
	_, err := RunChain(context.Background(), c, guildEvent("g"), first)
	require.NoError(t, err)

	// A fresh transient resolution starts without the previous call's params.
	inst, err := c.Resolve("stub")
	require.NoError(t, err)
	assert.Nil(t, inst.(*stubGuard).params)
}

func TestGuildOnly(t *testing.T) {
	g := GuildOnly{}

	ok, err := g.CanActivate(context.Background(), guildEvent("g1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CanActivate(context.Background(), guildEvent(""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserPermission(t *testing.T) {
	ev := guildEvent("g1")
	ev.Interaction.Member.Permissions = discordgo.PermissionManageMessages

	g := &UserPermission{}
	g.SetParams(map[string]any{"permissions": int64(discordgo.PermissionManageMessages)})
	ok, err := g.CanActivate(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, ok)

	g.SetParams(map[string]any{"permissions": int64(discordgo.PermissionAdministrator)})
	ok, err = g.CanActivate(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimitPerKey(t *testing.T) {
	g := NewRateLimit(time.Hour, 1)

	alice := guildEvent("g1")
	ok, err := g.CanActivate(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CanActivate(context.Background(), alice)
	require.NoError(t, err)
	assert.False(t, ok, "second call within the window must be rejected")

	bob := guildEvent("g1")
	bob.Interaction.Member.User.ID = "u2"
	ok, err = g.CanActivate(context.Background(), bob)
	require.NoError(t, err)
	assert.True(t, ok, "a different key has its own bucket")
}
