package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, newMemberView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := m.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.store.AddMember(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Member created",
		"member_id", stored.ID, "name", stored.Name)
	writeJSON(w, http.StatusCreated, newMemberView(stored))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m))
}

// handleUpdateMember replaces name, email and monthly income. The
// wallet balance only moves through wallet transactions.
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	m.ID = existing.ID
	m.WalletBalance = existing.WalletBalance
	if err := m.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.UpdateMember(r.Context(), m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m))
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveMember(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Member removed", "member_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}
