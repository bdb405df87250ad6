package manager

import "github.com/rs/zerolog"

// LogPublisher writes lifecycle events to a structured logger. Failures are
// logged at error level, everything else at info.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(l zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: l.With().Str("component", "manager").Logger()}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info()
	switch e.Name {
	case "load_failed", "unload_error", "spawn_exit", "spawn_timeout":
		ev = p.log.Error()
	}
	ev.Str("event", e.Name).Str("model", e.ModelID).Fields(e.Fields).Msg("lifecycle")
}
