package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"ipg/assemble"
	"ipg/docx"
	"ipg/paper"
	"ipg/similarity"
	"ipg/state"
)

// DownloadName is the fixed attachment filename for generated documents.
const DownloadName = "ieee_paper.docx"

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.env.Log.Warn("Unable to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

// handleGenerate builds a document from the posted paper description and
// returns it as an attachment. Structural problems with the input come back
// as 400 with the validation message, anything else as 500.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	doc, err := paper.Parse(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := paper.Validate(doc); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := paper.Prepare(doc, s.env.Log); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := state.ContextWithExistingEnv(r.Context(), s.env)
	data, rpt, err := assemble.Build(ctx, doc)
	if err != nil {
		var vErr *paper.ValidationError
		if errors.As(err, &vErr) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.env.Log.Error("Document generation failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	for _, o := range rpt.Outcomes {
		if !o.Embedded {
			s.env.Log.Warn("Asset skipped during build",
				zap.String("id", rpt.BuildID),
				zap.String("kind", string(o.Kind)),
				zap.String("where", o.Where),
				zap.String("reason", o.Reason))
		}
	}

	w.Header().Set("Content-Type", docx.MIMEType)
	w.Header().Set("Content-Disposition", "attachment; filename="+DownloadName)
	if _, err := w.Write(data); err != nil {
		s.env.Log.Warn("Unable to write document response", zap.Error(err))
	}
}

// handleUploadImage converts an uploaded image file to a standardized base64
// PNG payload suitable for inlining into a paper description.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.openUpload(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"format":   "PNG",
		"base64":   base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// handleSimilarity runs the similarity pipeline over an uploaded document
// package and returns the report.
func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	file, _, err := s.openUpload(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := state.ContextWithExistingEnv(r.Context(), s.env)
	rpt, err := similarity.Analyze(ctx, data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rpt)
}

// openUpload fetches the "file" part of a multipart request, bounded by the
// configured upload limit. On failure the response is already written.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	limit := s.env.Cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, nil, err
	}
	return file, header, nil
}
