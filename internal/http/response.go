package http

import (
	"encoding/json"
	"net/http"
)

// envelope é o formato JSON dos endpoints operacionais (/health e /ready).
type envelope struct {
	Data  any      `json:"data"`
	Error *problem `json:"error"`
}

type problem struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type healthView struct {
	Status     string `json:"status"`
	Workspaces int    `json:"workspaces"`
}

type readyView struct {
	Ready  bool     `json:"ready"`
	Checks []string `json:"checks"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// writeProblem responde a falha com o detalhe de cada verificação que não passou.
func writeProblem(w http.ResponseWriter, status int, code, message string, checks map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &problem{Code: code, Message: message, Checks: checks}})
}
