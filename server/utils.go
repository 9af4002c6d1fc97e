package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minaorangina/thegame/game"
	"github.com/minaorangina/thegame/store"
	"go.uber.org/zap"
)

// ErrorRes is the body of every failed request
type ErrorRes struct {
	Error    string `json:"error"`
	Required *int   `json:"required,omitempty"`
	Played   *int   `json:"played,omitempty"`
}

// statusFor maps engine and store errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrGameExpired):
		return http.StatusGone
	case errors.Is(err, store.ErrUnknownGameID),
		errors.Is(err, store.ErrEmptyStore),
		errors.Is(err, game.ErrUnknownPlayerID):
		return http.StatusNotFound
	case game.IsRejection(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *GameServer) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, status, ErrorRes{Error: "something went wrong"})
		return
	}

	res := ErrorRes{Error: err.Error()}
	var minErr *game.MinimumPlaysError
	if errors.As(err, &minErr) {
		res.Required = &minErr.Required
		res.Played = &minErr.Played
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorRes{Error: msg})
}

// decodeBody reads the JSON request body into dst, replying with a 400 if
// it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "missing body")
		return false
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return false
	}
	return true
}

func requireVersion(w http.ResponseWriter, version *int64) bool {
	if version == nil {
		writeMessage(w, http.StatusBadRequest, "missing version")
		return false
	}
	if *version < 0 {
		writeMessage(w, http.StatusBadRequest, "version must not be negative")
		return false
	}
	return true
}

// originChecker allows websocket upgrades from the listed origins, and from
// clients that send no origin at all
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
