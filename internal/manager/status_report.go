package manager

import (
	"time"

	"llmgate/pkg/types"
)

// Health builds the /health view. It never triggers a load.
func (m *Manager) Health() types.HealthResponse {
	snap := m.Snapshot()
	resp := types.HealthResponse{
		Status:        "ok",
		ModelLoaded:   snap.State == StateReady,
		UptimeSeconds: m.Uptime().Seconds(),
		State:         string(snap.State),
	}
	if snap.State == StateFailed {
		resp.Error = snap.Reason
	}
	return resp
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	resp := types.StatusResponse{
		State:                   string(snap.State),
		Engine:                  m.engine,
		ModelPath:               m.ModelPath(),
		StateSinceUnix:          snap.Since.Unix(),
		LoadsTotal:              m.loadsTotal.Load(),
		LoadFailuresTotal:       m.loadFailuresTotal.Load(),
		GenerationsTotal:        m.generationsTotal.Load(),
		GenerationFailuresTotal: m.generationFailures.Load(),
		Inflight:                m.inflight.Load(),
		UptimeSeconds:           int64(m.Uptime().Seconds()),
		ServerTimeUnix:          time.Now().Unix(),
		Sanity:                  m.SanityCheck(),
	}
	if snap.State == StateFailed {
		resp.Error = snap.Reason
	}
	return resp
}
