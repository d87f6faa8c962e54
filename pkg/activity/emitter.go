package activity

import (
	"context"
	"strings"
)

// DefaultChannel tags events emitted without an explicit channel.
const DefaultChannel = "map-preferences"

// Config controls activity emission. Journal, when set, names a JSON lines
// file that receives every event as a go-users activity record; ActorID is
// stamped on events that carry no actor.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
	Journal string `yaml:"journal"`
	ActorID string `yaml:"actor_id"`
}

// Emitter fans out events to hooks while applying defaults. A nil Emitter is
// valid and emits nothing.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	actorID string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	kept := compactHooks(hooks)
	return &Emitter{
		hooks:   kept,
		enabled: cfg.Enabled && len(kept) > 0,
		channel: channel,
	}
}

// WithActor returns a copy of the emitter that stamps actorID on events
// lacking one.
func (e *Emitter) WithActor(actorID string) *Emitter {
	if e == nil {
		return nil
	}
	clone := *e
	clone.actorID = strings.TrimSpace(actorID)
	return &clone
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit forwards the event to all hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	return e.hooks.Notify(ctx, event)
}

func compactHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	kept := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
