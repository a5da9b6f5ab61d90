// Package http serves the draft wizard API over HTTP: draft CRUD, media
// uploads, listing generation, and export, plus the operational endpoints.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/marketplace"
	"github.com/listora/listora/pkg/observability"
	"github.com/listora/listora/pkg/storage"
	"github.com/listora/listora/pkg/transport"
	"github.com/listora/listora/pkg/upload"
)

// Adapter routes the wizard API to the pipeline and the draft store and
// serializes responses.
type Adapter struct {
	pipeline transport.Pipeline
	store    transport.DraftStore
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64 // JSON bodies; uploads have their own limits
	ShutdownTimeout int   // seconds
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     1 << 20, // 1 MB
		ShutdownTimeout: 30,
	}
}

// NewAdapter creates an HTTP adapter serving the wizard API with the given
// pipeline and draft store.
func NewAdapter(pipeline transport.Pipeline, store transport.DraftStore, cfg Config) *Adapter {
	a := &Adapter{
		pipeline: pipeline,
		store:    store,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/drafts", a.handleCreateDraft)
	a.mux.HandleFunc("GET /v1/drafts", a.handleListDrafts)
	a.mux.HandleFunc("GET /v1/drafts/{id}", a.handleGetDraft)
	a.mux.HandleFunc("PATCH /v1/drafts/{id}", a.handleUpdateDraft)
	a.mux.HandleFunc("DELETE /v1/drafts/{id}", a.handleDeleteDraft)
	a.mux.HandleFunc("POST /v1/drafts/{id}/image", a.handleUploadImage)
	a.mux.HandleFunc("POST /v1/drafts/{id}/audio", a.handleUploadAudio)
	a.mux.HandleFunc("POST /v1/drafts/{id}/generate", a.handleGenerate)
	a.mux.HandleFunc("GET /v1/drafts/{id}/listings/{marketplace}/export", a.handleExportListing)
	a.mux.HandleFunc("GET /v1/marketplaces", a.handleListMarketplaces)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.Handle("GET /metrics", promhttp.Handler())

	return a
}

// Handler returns the http.Handler for this adapter. Middleware is applied
// by the server; use this directly for httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// handleCreateDraft handles POST /v1/drafts.
func (a *Adapter) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDraftRequest
	if apiErr := a.decodeJSON(w, r, &req); apiErr != nil {
		return
	}

	req.Product.Normalize()
	d := &api.Draft{
		ID:        api.NewDraftID(),
		Object:    "draft",
		Step:      stepFor(&req.Product),
		Product:   req.Product,
		CreatedAt: time.Now().Unix(),
	}

	if err := a.store.SaveDraft(r.Context(), d); err != nil {
		a.writeStoreError(w, d.ID, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleGetDraft handles GET /v1/drafts/{id}.
func (a *Adapter) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDraft handles PATCH /v1/drafts/{id}. Changing the product
// brief invalidates any previously generated listings.
func (a *Adapter) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	var req api.UpdateDraftRequest
	if apiErr := a.decodeJSON(w, r, &req); apiErr != nil {
		return
	}

	req.Product.Normalize()
	d.Product = req.Product
	d.ResetResults()
	d.Step = stepFor(&d.Product)

	if err := a.store.UpdateDraft(r.Context(), d); err != nil {
		a.writeStoreError(w, d.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDraft handles DELETE /v1/drafts/{id}.
func (a *Adapter) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateDraftID(id) {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "malformed draft ID"))
		return
	}

	if err := a.store.DeleteDraft(r.Context(), id); err != nil {
		a.writeStoreError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListDrafts handles GET /v1/drafts.
func (a *Adapter) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	opts, apiErr := parseListOptions(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	result, err := a.store.ListDrafts(r.Context(), opts)
	if err != nil {
		a.writeStoreError(w, "", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleUploadImage handles POST /v1/drafts/{id}/image. The image is
// analyzed by the vision model and the extracted details fill empty brief
// fields.
func (a *Adapter) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	data, _, apiErr := readUpload(w, r, "image", upload.MaxImageBytes)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	mimeType, apiErr := upload.CheckImage(data)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	observability.UploadBytesTotal.WithLabelValues("image").Add(float64(len(data)))

	if _, err := a.pipeline.AnalyzeImage(r.Context(), d, data, mimeType); err != nil {
		writePipelineError(w, err)
		return
	}

	d.ResetResults()
	d.Step = stepFor(&d.Product)

	if err := a.store.UpdateDraft(r.Context(), d); err != nil {
		a.writeStoreError(w, d.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleUploadAudio handles POST /v1/drafts/{id}/audio. The voice note is
// transcribed and, when the brief has no features yet, the transcript's
// leading lines become features.
func (a *Adapter) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	data, filename, apiErr := readUpload(w, r, "audio", upload.MaxAudioBytes)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	if _, apiErr := upload.CheckAudio(data, filename); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	observability.UploadBytesTotal.WithLabelValues("audio").Add(float64(len(data)))

	if _, err := a.pipeline.Transcribe(r.Context(), d, data, filename); err != nil {
		writePipelineError(w, err)
		return
	}

	d.ResetResults()
	d.Step = stepFor(&d.Product)

	if err := a.store.UpdateDraft(r.Context(), d); err != nil {
		a.writeStoreError(w, d.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleGenerate handles POST /v1/drafts/{id}/generate.
func (a *Adapter) handleGenerate(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	var req api.GenerateRequest
	if apiErr := a.decodeJSON(w, r, &req); apiErr != nil {
		return
	}

	if err := a.pipeline.Generate(r.Context(), d, &req); err != nil {
		writePipelineError(w, err)
		return
	}

	if err := a.store.UpdateDraft(r.Context(), d); err != nil {
		a.writeStoreError(w, d.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleExportListing handles
// GET /v1/drafts/{id}/listings/{marketplace}/export.
func (a *Adapter) handleExportListing(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	key := r.PathValue("marketplace")
	listing, ok := d.Listings[key]
	if !ok {
		transport.WriteAPIError(w,
			api.NewNotFoundError("no generated listing for marketplace "+key))
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, marketplace.ExportMarkdown(listing))
	case "json":
		data, err := marketplace.ExportJSON(listing)
		if err != nil {
			transport.WriteAPIError(w, api.NewServerError(err.Error()))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	default:
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("format", "format must be 'markdown' or 'json'"))
	}
}

// marketplaceList is the response shape for GET /v1/marketplaces.
type marketplaceList struct {
	Object string                 `json:"object"`
	Data   []marketplace.Template `json:"data"`
}

// handleListMarketplaces handles GET /v1/marketplaces.
func (a *Adapter) handleListMarketplaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, marketplaceList{
		Object: "list",
		Data:   marketplace.All(),
	})
}

// handleHealthz handles GET /healthz.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz handles GET /readyz. Readiness requires a reachable store.
func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadDraft resolves the {id} path value to a stored draft, writing the
// error response itself when that fails.
func (a *Adapter) loadDraft(w http.ResponseWriter, r *http.Request) (*api.Draft, bool) {
	id := r.PathValue("id")
	if !api.ValidateDraftID(id) {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "malformed draft ID"))
		return nil, false
	}

	d, err := a.store.GetDraft(r.Context(), id)
	if err != nil {
		a.writeStoreError(w, id, err)
		return nil, false
	}
	return d, true
}

// decodeJSON decodes a JSON request body into v, enforcing the Content-Type
// and the configured body size limit. It writes the error response itself
// and returns the error for flow control.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) *api.APIError {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		apiErr := api.NewInvalidRequestError("content_type", "Content-Type must be application/json")
		transport.WriteErrorResponse(w, apiErr, http.StatusUnsupportedMediaType)
		return apiErr
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apiErr := api.NewInvalidRequestError("body",
				fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize))
			transport.WriteErrorResponse(w, apiErr, http.StatusRequestEntityTooLarge)
			return apiErr
		}
		apiErr := api.NewInvalidRequestError("body", "invalid JSON: "+err.Error())
		transport.WriteErrorResponse(w, apiErr, http.StatusBadRequest)
		return apiErr
	}

	return nil
}

// readUpload extracts one file from a multipart form. The multipart framing
// adds overhead on top of the payload limit.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, string, *api.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", api.NewInvalidRequestError(field,
				fmt.Sprintf("upload exceeds the %dMB limit", limit>>20))
		}
		return nil, "", api.NewInvalidRequestError(field,
			fmt.Sprintf("multipart form field %q is required", field))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", api.NewInvalidRequestError(field, "failed to read upload: "+err.Error())
	}

	return data, header.Filename, nil
}

// stepFor returns the wizard step a brief qualifies for: marketplace
// selection once the brief passes validation, the form step otherwise.
func stepFor(p *api.ProductInfo) api.DraftStep {
	if api.ValidateProduct(p, api.DefaultValidationConfig()) == nil {
		return api.StepMarketplaces
	}
	return api.StepProduct
}

// parseListOptions extracts pagination parameters from the query string.
func parseListOptions(r *http.Request) (transport.ListOptions, *api.APIError) {
	q := r.URL.Query()
	opts := transport.ListOptions{
		After:  q.Get("after"),
		Before: q.Get("before"),
		Order:  q.Get("order"),
	}

	if opts.After != "" && opts.Before != "" {
		return opts, api.NewInvalidRequestError("after", "cannot use both 'after' and 'before' cursors")
	}

	if opts.Order != "" && opts.Order != "asc" && opts.Order != "desc" {
		return opts, api.NewInvalidRequestError("order", "order must be 'asc' or 'desc'")
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return opts, api.NewInvalidRequestError("limit", "limit must be a positive integer")
		}
		opts.Limit = limit
	}

	if stepStr := q.Get("step"); stepStr != "" {
		step, err := strconv.Atoi(stepStr)
		if err != nil || step < 1 || step > 3 {
			return opts, api.NewInvalidRequestError("step", "step must be 1, 2, or 3")
		}
		opts.Step = step
	}

	return opts, nil
}

// writePipelineError writes an error returned by the pipeline.
func writePipelineError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError(err.Error())
	}
	transport.WriteAPIError(w, apiErr)
}

// writeStoreError writes an error returned by the draft store.
func (a *Adapter) writeStoreError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		transport.WriteAPIError(w, api.NewNotFoundError("draft "+id+" not found"))
	case errors.Is(err, storage.ErrConflict):
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "draft "+id+" already exists"))
	default:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			transport.WriteAPIError(w, apiErr)
		} else {
			transport.WriteAPIError(w, api.NewServerError(err.Error()))
		}
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
