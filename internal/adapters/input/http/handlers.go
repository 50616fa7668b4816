package http

import (
	"net/http"
	"strconv"

	"domotic/internal/domain/model"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// handleSunrise is the external trigger. It always answers Done; failures are only logged.
func (s *Server) handleSunrise(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.panel.ApplyStoredSceneByName(r.Context(), name); err != nil {
		log.Error().Err(err).Str("name", name).Msg("Sunrise trigger failed")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Done"))
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.panel.ListDevices(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, devices)
}

func (s *Server) handleCloudDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.panel.CloudDevices(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, devices)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var device model.Device
	if err := decode(r, &device); err != nil {
		respondError(w, err)
		return
	}
	detail, err := s.panel.CreateDevice(r.Context(), device)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, detail)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	detail, err := s.panel.Detail(r.Context(), mux.Vars(r)[urlDeviceID])
	respondDetail(w, detail, err)
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var device model.Device
	if err := decode(r, &device); err != nil {
		respondError(w, err)
		return
	}
	detail, err := s.panel.UpdateDevice(r.Context(), mux.Vars(r)[urlDeviceID], device)
	respondDetail(w, detail, err)
}

func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.panel.RemoveDevice(r.Context(), mux.Vars(r)[urlDeviceID]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveScene(w http.ResponseWriter, r *http.Request) {
	var scene model.Scene
	if err := decode(r, &scene); err != nil {
		respondError(w, err)
		return
	}
	detail, err := s.panel.SaveScene(r.Context(), mux.Vars(r)[urlDeviceID], scene)
	respondDetail(w, detail, err)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	detail, err := s.panel.DeleteScene(r.Context(), mux.Vars(r)[urlDeviceID])
	respondDetail(w, detail, err)
}

func (s *Server) handlePreviewScene(w http.ResponseWriter, r *http.Request) {
	var scene model.Scene
	if err := decode(r, &scene); err != nil {
		respondError(w, err)
		return
	}
	detail, err := s.panel.PreviewScene(r.Context(), mux.Vars(r)[urlDeviceID], scene)
	respondDetail(w, detail, err)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	detail, err := s.panel.ApplyStoredScene(r.Context(), mux.Vars(r)[urlDeviceID])
	respondDetail(w, detail, err)
}

func (s *Server) handleOn(w http.ResponseWriter, r *http.Request) {
	detail, err := s.panel.RawOn(r.Context(), mux.Vars(r)[urlDeviceID])
	respondDetail(w, detail, err)
}

func (s *Server) handleOff(w http.ResponseWriter, r *http.Request) {
	detail, err := s.panel.RawOff(r.Context(), mux.Vars(r)[urlDeviceID])
	respondDetail(w, detail, err)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, &model.ValidationError{Field: "limit", Reason: "must be a number"})
			return
		}
		limit = n
	}
	history, err := s.panel.History(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, history)
}
