package statusapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openmx/mxnet/internal/cli/health"
	"github.com/openmx/mxnet/pkg/mxnet"
)

// ServerSummary is the JSON shape returned for one Server connection.
type ServerSummary struct {
	Address       string `json:"address"`
	Status        string `json:"status"`
	DataFormat    string `json:"dataFormat"`
	Use64BitLongs bool   `json:"use64BitLongs"`
	RemoteVersion int    `json:"remoteVersion"`
	Generation    uint64 `json:"generation"`
	CallbackCount int    `json:"callbackCount"`
}

func summarize(s *mxnet.Server) ServerSummary {
	return ServerSummary{
		Address:       s.Address().Raw,
		Status:        s.Status().String(),
		DataFormat:    s.DataFormat().String(),
		Use64BitLongs: s.Use64BitLongs(),
		RemoteVersion: s.RemoteVersion(),
		Generation:    s.Generation(),
		CallbackCount: s.CallbackCount(),
	}
}

// handler serves the introspection endpoints over a *mxnet.Directory.
type handler struct {
	dir       *mxnet.Directory
	startedAt time.Time
}

// listServers handles GET /servers.
func (h *handler) listServers(w http.ResponseWriter, r *http.Request) {
	servers := h.dir.Servers()
	summaries := make([]ServerSummary, 0, len(servers))
	for _, s := range servers {
		summaries = append(summaries, summarize(s))
	}
	writeJSON(w, http.StatusOK, okResponse(summaries))
}

// getServer handles GET /servers/{address}.
func (h *handler) getServer(w http.ResponseWriter, r *http.Request) {
	want := chi.URLParam(r, "address")
	for _, s := range h.dir.Servers() {
		if s.Address().Raw == want {
			writeJSON(w, http.StatusOK, okResponse(summarize(s)))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorResponse("no such server: "+want))
}

// liveness handles GET /healthz - a liveness probe with no dependency on
// any server connection being up. The response uses internal/cli/health's
// shared Response shape so mxctl's own client code can decode it with the
// same type a future health-polling command would use.
func (h *handler) liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)

	resp := health.Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	resp.Data.Service = "mxctl"
	resp.Data.StartedAt = h.startedAt.UTC().Format(time.RFC3339)
	resp.Data.Uptime = uptime.String()
	resp.Data.UptimeSec = int64(uptime.Seconds())

	writeJSON(w, http.StatusOK, resp)
}
