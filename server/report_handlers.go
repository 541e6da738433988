package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/pr-admin-client/report"
	"github.com/rs/zerolog/log"
)

// ReportFormField is the multipart field an upload carries the file in
const ReportFormField = "file"

func (s *Server) ListReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Reports.List()
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := s.repos.Reports.Get(r.PathValue("id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// UploadReportHandler parses a multipart CSV or JSON upload and stores the result. An optional
// "name" field overrides the file name.
func (s *Server) UploadReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, report.MaxReportSize+1<<20)
		if err := r.ParseMultipartForm(report.MaxReportSize); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile(ReportFormField)
		if err != nil {
			writeJSONError(w, "invalid_request", "Missing "+ReportFormField+" field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		rep, err := report.Parse(header.Filename, file)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		if name := strings.TrimSpace(r.FormValue("name")); name != "" {
			rep.Name = name
		}
		if err := s.repos.Reports.Save(rep); err != nil {
			writeRepoError(w, err)
			return
		}

		log.Info().
			Str("report_id", rep.ID).
			Str("name", rep.Name).
			Int("rows", len(rep.Rows)).
			Int("warnings", len(rep.Warnings)).
			Msg("Report imported")
		writeJSON(w, http.StatusCreated, rep)
	}
}

func (s *Server) DeleteReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.repos.Reports.Delete(r.PathValue("id")); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
