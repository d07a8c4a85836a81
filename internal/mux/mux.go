package mux

import (
	"net/http"

	"runo-server/pkg/room"

	gmux "github.com/gorilla/mux"
)

// StatusProvider returns the latest session status
type StatusProvider interface {
	Status() room.Status
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	status  StatusProvider
}

// NewMux returns a new HTTP mux
func NewMux(version string, status StatusProvider) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		status:  status,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodGet).Path("/session").Handler(this.getSession())
	r.Methods(http.MethodGet).Path("/session/players/{id:[0-9]+}").Handler(this.getSessionPlayerID())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})

	return this
}
