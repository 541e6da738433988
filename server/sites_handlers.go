package server

import (
	"net/http"

	"github.com/jrsteele09/pr-admin-client/sites"
)

func (s *Server) ListWebsitesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Websites.List()
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateWebsiteHandler refuses websites whose URL is on the block list
func (s *Server) CreateWebsiteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var website sites.Website
		if !decodeJSON(w, r, &website) {
			return
		}
		website.ID = ""
		if err := website.Validate(); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		blocked, err := s.repos.BlockedURLs.IsBlocked(website.URL)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		if blocked {
			writeJSONError(w, "conflict", website.URL+" is blocked", http.StatusConflict)
			return
		}

		if err := s.repos.Websites.Upsert(&website); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, website)
	}
}

func (s *Server) DeleteWebsiteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.repos.Websites.Delete(r.PathValue("id")); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListBlockedURLsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.BlockedURLs.List()
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CheckBlockedURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		blocked, err := s.repos.BlockedURLs.IsBlocked(raw)
		if err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": raw, "blocked": blocked})
	}
}

func (s *Server) BlockURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var blocked sites.BlockedURL
		if !decodeJSON(w, r, &blocked) {
			return
		}
		blocked.ID = ""
		if err := s.repos.BlockedURLs.Add(&blocked); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, blocked)
	}
}

func (s *Server) UnblockURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.repos.BlockedURLs.Delete(r.PathValue("id")); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
