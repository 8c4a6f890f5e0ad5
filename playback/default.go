package playback

import "github.com/rs/zerolog"

// There is one audio output per process, so callers share one slot.
var defaultController = New(zerolog.Nop())

// Default returns the process-wide controller.
func Default() *Controller {
	return defaultController
}

// SetLogger replaces the logger of the process-wide controller.
func SetLogger(log zerolog.Logger) {
	defaultController.mu.Lock()
	defaultController.log = log
	defaultController.mu.Unlock()
}

// Toggle toggles h on the process-wide controller.
func Toggle(h Handle, ctl Control, onActivate, onDeactivate Hook) {
	defaultController.Toggle(h, ctl, onActivate, onDeactivate)
}
