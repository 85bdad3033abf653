package guard

import (
	"context"

	"github.com/l7aromeo/meocord/registry"
)

// GuildOnly rejects events that did not originate in a guild, such as direct
// messages.
type GuildOnly struct{}

func (GuildOnly) CanActivate(_ context.Context, ev *registry.Event) (bool, error) {
	return ev.GuildID() != "", nil
}
