package app

import (
	"fmt"
	"math/rand"

	"github.com/robfig/cron/v3"
)

// startPresence begins rotating the configured activity texts. Presence is
// cosmetic; every failure here is logged and ignored.
func (a *App) startPresence() {
	if len(a.cfg.Activities) == 0 || a.cfg.PresenceInterval <= 0 {
		return
	}

	a.rotatePresence()

	c := cron.New()
	spec := fmt.Sprintf("@every %s", a.cfg.PresenceInterval)
	if _, err := c.AddFunc(spec, a.rotatePresence); err != nil {
		a.log.Warn().Err(err).Str("schedule", spec).Msg("presence rotation not started")
		return
	}
	c.Start()
	a.cron = c
	a.log.Info().Str("schedule", spec).Int("activities", len(a.cfg.Activities)).Msg("presence rotation started")
}

func (a *App) rotatePresence() {
	name := a.cfg.Activities[rand.Intn(len(a.cfg.Activities))]
	if err := a.session.UpdateGameStatus(0, name); err != nil {
		a.log.Warn().Err(err).Str("activity", name).Msg("presence update failed")
	}
}
