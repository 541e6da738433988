package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/pr-admin-client/users"
)

const defaultPageSize = 100

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := s.repos.Users.List(offset, limit)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := req.NewUser()
		if err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if claims, ok := ClaimsFromContext(r.Context()); ok && claims.Subject == id {
			writeJSONError(w, "invalid_request", "You cannot delete yourself", http.StatusBadRequest)
			return
		}
		if err := s.repos.Users.Delete(id); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	return offset, limit
}
