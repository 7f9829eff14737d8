package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/session"
)

// maxBodyBytes leaves room for base64 expansion of the largest image.
const maxBodyBytes = model.MaxImageBytes/3*4 + 1<<20

type analyzeResponse struct {
	model.ExportDocument
	ID       string `json:"id,omitempty"`
	Provider string `json:"provider"`
}

type wallSetResponse struct {
	model.WallSet
	Document model.ExportDocument `json:"document"`
}

// GET /healthz
func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"remote":  r.remote,
		"storage": r.store != nil,
	})
	return nil
}

// GET /v1/grades
func (r *Router) handleGrades(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, grade.Table())
	return nil
}

// GET /v1/grades/convert?v=V4
func (r *Router) handleConvert(w http.ResponseWriter, req *http.Request) error {
	v := strings.ToUpper(strings.TrimSpace(req.URL.Query().Get("v")))
	if !grade.IsV(v) {
		return fmt.Errorf("%w: %q is not a V grade", errBadRequest, v)
	}
	writeJSON(w, http.StatusOK, grade.Pair{V: v, Font: grade.VToFont(v)})
	return nil
}

// POST /v1/analyze[?demo=true|remote=true][&save=true]
//
// The photo is the raw body, a multipart "photo" field, or a JSON body
// {"image": "<base64 or data URL>", "media_type": "image/jpeg"}.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

	img, source, err := readPhoto(req)
	if err != nil {
		return err
	}

	mode := analysis.ModeAuto
	q := req.URL.Query()
	switch {
	case queryBool(q.Get("demo")):
		mode = analysis.ModeDemo
	case queryBool(q.Get("remote")):
		mode = analysis.ModeRemote
	}

	ctrl := session.New(r.analyzer, session.WithMode(mode), session.WithTimeout(r.timeout))
	if err := ctrl.Submit(req.Context(), img); err != nil {
		return err
	}
	if _, err := ctrl.Wait(req.Context()); err != nil {
		ctrl.Reset()
		return err
	}
	if err := ctrl.Err(); err != nil {
		return err
	}

	resp := analyzeResponse{
		ExportDocument: ctrl.ExportDocument(),
		Provider:       ctrl.Provider(),
	}

	if queryBool(q.Get("save")) {
		if r.store == nil {
			return errNoStore
		}
		id, err := r.store.SaveWallSet(req.Context(), resp.ExportDocument, resp.Provider, source)
		if err != nil {
			return err
		}
		resp.ID = id
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// GET /v1/sets?limit=
func (r *Router) handleListSets(w http.ResponseWriter, req *http.Request) error {
	if r.store == nil {
		return errNoStore
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	sets, err := r.store.ListWallSets(req.Context(), limit)
	if err != nil {
		return err
	}
	if sets == nil {
		sets = []model.WallSet{}
	}
	writeJSON(w, http.StatusOK, sets)
	return nil
}

// GET /v1/sets/{id}
func (r *Router) handleGetSet(w http.ResponseWriter, req *http.Request) error {
	if r.store == nil {
		return errNoStore
	}
	summary, doc, err := r.store.GetWallSet(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, wallSetResponse{WallSet: summary, Document: doc})
	return nil
}

// DELETE /v1/sets/{id}
func (r *Router) handleDeleteSet(w http.ResponseWriter, req *http.Request) error {
	if r.store == nil {
		return errNoStore
	}
	if err := r.store.DeleteWallSet(req.Context(), chi.URLParam(req, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func readPhoto(req *http.Request) (model.Image, string, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))

	switch {
	case mediaType == "multipart/form-data":
		file, header, err := req.FormFile("photo")
		if err != nil {
			return model.Image{}, "", fmt.Errorf("%w: multipart field \"photo\": %v", errBadRequest, err)
		}
		defer func() { _ = file.Close() }()
		img, err := model.ReadImage(file, imageType(header.Header.Get("Content-Type")))
		return img, header.Filename, err

	case mediaType == "application/json":
		var body struct {
			Image     string `json:"image"`
			MediaType string `json:"media_type"`
			Source    string `json:"source"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return model.Image{}, "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if body.Image == "" {
			return model.Image{}, "", model.ErrEmptyImage
		}
		img, err := model.ImageFromBase64(body.Image, body.MediaType)
		return img, body.Source, err

	default:
		img, err := model.ReadImage(req.Body, imageType(mediaType))
		return img, "", err
	}
}

// imageType drops declared types that are not images so the payload is sniffed.
func imageType(ct string) string {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/") {
		return ""
	}
	return ct
}

func queryBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
