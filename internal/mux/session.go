package mux

import (
	"net/http"
	"strconv"

	"runo-server/pkg/world"

	gmux "github.com/gorilla/mux"
)

func (m *Mux) getSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.status.Status())
	}
}

func (m *Mux) getSessionPlayerID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(gmux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		for _, player := range m.status.Status().Players {
			if player.ID == world.PlayerID(id) {
				writeJSON(w, http.StatusOK, player)
				return
			}
		}

		writeJSONError(w, http.StatusNotFound, nil)
	}
}
