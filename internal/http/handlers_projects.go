package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newProjectView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.store.AddProject(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Project created",
		"project_id", stored.ID, "name", stored.Name)
	writeJSON(w, http.StatusCreated, newProjectView(stored))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.UpdateProject(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

// handleDeleteProject removes the project; its expenses and templates
// survive with ProjectID cleared.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Project removed", "project_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}
