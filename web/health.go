package web

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var serverStart = time.Now()

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemUsedMB     uint64  `json:"mem_used_mb"`
	MemPercent    float64 `json:"mem_percent"`
}

// handleHealth reports liveness plus host load, since a box saturated by
// browser processes is the usual way this service degrades.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{
			Code:    http.StatusMethodNotAllowed,
			Message: "Method not allowed",
		})

		return
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(serverStart).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if percents, err := cpu.PercentWithContext(r.Context(), 0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		resp.MemUsedMB = vm.Used / (1 << 20)
		resp.MemPercent = vm.UsedPercent
	}

	renderJSON(w, http.StatusOK, resp)
}
