package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/generator"
	"github.com/vango-dev/projgen/internal/templates"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 16

// createRequest is the body of POST /api/projects and of each websocket
// request message.
type createRequest struct {
	Name    string `json:"name"`
	Port    int    `json:"port,omitempty"`
	Publish bool   `json:"publish,omitempty"`
	DryRun  bool   `json:"dryRun,omitempty"`
}

// decodeCreateRequest reads a single createRequest, rejecting unknown fields.
func decodeCreateRequest(r io.Reader) (createRequest, error) {
	var body createRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return createRequest{}, err
	}
	return body, nil
}

func (c createRequest) toRequest() generator.Request {
	return generator.Request{
		Name:    c.Name,
		Port:    c.Port,
		Publish: c.Publish,
		DryRun:  c.DryRun,
	}
}

// templateInfo describes one template set.
type templateInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Default     bool     `json:"default,omitempty"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	current := s.gen.Template().Name
	var out []templateInfo
	for _, name := range templates.List() {
		tmpl, err := templates.Get(name)
		if err != nil {
			continue
		}
		out = append(out, templateInfo{
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Files:       tmpl.Names(),
			Default:     tmpl.Name == current,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCreateRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.New("E100").WithDetail("invalid request body").Wrap(err))
		return
	}

	res, err := s.gen.Run(r.Context(), body.toRequest())
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// statusFor maps an error category to an HTTP status.
func statusFor(err error) int {
	switch errors.CategoryOf(err) {
	case errors.CategoryUsage, errors.CategoryValidation, errors.CategoryConfig:
		return http.StatusBadRequest
	case errors.CategoryPublish:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	io.WriteString(w, errors.FromError(err, "E103").FormatJSON()+"\n")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
