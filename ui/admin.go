package ui

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// adminStatus is the resource snapshot served at /admin.
type adminStatus struct {
	Session       string  `json:"session"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Requests      int64   `json:"requests"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	HeapSysMB     float64 `json:"heap_sys_mb"`
	NumGC         uint32  `json:"num_gc"`
}

func (a *App) handleAdmin(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	uptime := time.Since(a.startedAt)

	status := adminStatus{
		Session:       a.store.Session().String(),
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Requests:      a.requests.Load(),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / (1 << 20),
		HeapSysMB:     float64(mem.HeapSys) / (1 << 20),
		NumGC:         mem.NumGC,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
