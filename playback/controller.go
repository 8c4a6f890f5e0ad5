// Package playback keeps at most one audio handle playing at a time and keeps
// the controls bound to those handles in sync with what is actually playing.
package playback

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handle is a playable media resource. Implementations must be comparable
// (pointer types), the controller tells items apart by handle identity.
type Handle interface {
	Play() error
	Pause()
	Paused() bool
	// OnFinished registers the callback run when playback reaches its natural
	// end. A later registration replaces the earlier one.
	OnFinished(func())
}

// Control is the visible affordance bound to a handle.
type Control interface {
	SetPlaying(playing bool)
}

// Hook is a side effect tied to an item becoming active or inactive.
type Hook func()

// Controller owns the single active-item slot.
type Controller struct {
	mu            sync.Mutex
	activeHandle  Handle
	activeControl Control
	onDeactivate  Hook
	log           zerolog.Logger
}

func New(log zerolog.Logger) *Controller {
	return &Controller{log: log}
}

// Toggle starts the handle when it is paused and pauses it when it is playing.
// Whatever else was active is stopped first. A nil handle is ignored.
func (c *Controller) Toggle(h Handle, ctl Control, onActivate, onDeactivate Hook) {
	if h == nil {
		return
	}

	var hooks []Hook

	c.mu.Lock()
	if c.activeHandle != nil && c.activeHandle != h {
		hooks = append(hooks, c.releaseLocked())
	}

	if h.Paused() {
		if err := h.Play(); err != nil {
			c.log.Error().Err(err).Msg("failed to start playback")
			setPlaying(ctl, false)
			if c.activeHandle == h {
				c.clearLocked()
			}
		} else {
			setPlaying(ctl, true)
			c.activeHandle = h
			c.activeControl = ctl
			c.onDeactivate = onDeactivate
			hooks = append(hooks, onActivate)
		}
	} else {
		h.Pause()
		setPlaying(ctl, false)
		c.clearLocked()
		hooks = append(hooks, onDeactivate)
	}

	h.OnFinished(func() { c.finished(h, ctl, onDeactivate) })
	c.mu.Unlock()

	runHooks(hooks)
}

// Stop pauses the active item, if any, and runs its deactivation hook.
func (c *Controller) Stop() {
	c.mu.Lock()
	var hook Hook
	if c.activeHandle != nil {
		hook = c.releaseLocked()
	}
	c.mu.Unlock()

	runHooks([]Hook{hook})
}

// Active reports the item currently allowed to play.
func (c *Controller) Active() (Handle, Control, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeHandle, c.activeControl, c.activeHandle != nil
}

// IsActive reports whether h is the active item.
func (c *Controller) IsActive(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return h != nil && c.activeHandle == h
}

func (c *Controller) finished(h Handle, ctl Control, onDeactivate Hook) {
	c.mu.Lock()
	// restarted before the completion got here
	if !h.Paused() {
		c.mu.Unlock()
		return
	}
	setPlaying(ctl, false)
	wasActive := c.activeHandle == h
	if wasActive {
		c.clearLocked()
	}
	c.mu.Unlock()

	if wasActive {
		runHooks([]Hook{onDeactivate})
	}
}

// releaseLocked pauses the active item, clears the slot and returns the hook
// registered when the item was activated.
func (c *Controller) releaseLocked() Hook {
	c.activeHandle.Pause()
	setPlaying(c.activeControl, false)
	hook := c.onDeactivate
	c.clearLocked()
	return hook
}

func (c *Controller) clearLocked() {
	c.activeHandle = nil
	c.activeControl = nil
	c.onDeactivate = nil
}

func setPlaying(ctl Control, playing bool) {
	if ctl != nil {
		ctl.SetPlaying(playing)
	}
}

func runHooks(hooks []Hook) {
	for _, hook := range hooks {
		if hook != nil {
			hook()
		}
	}
}
