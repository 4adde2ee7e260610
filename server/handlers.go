// Package server exposes the generation session and its companion tools as a
// JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"yt-seo-studio/assistant"
	"yt-seo-studio/captions"
	"yt-seo-studio/pipeline"
	"yt-seo-studio/thumbnail"
	"yt-seo-studio/types"
	"yt-seo-studio/youtube"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VideoService is the YouTube surface used by the API
type VideoService interface {
	VideoDetails(ctx context.Context, videoID string) (*youtube.Video, error)
	ListCaptions(ctx context.Context, videoID, accessToken string) ([]youtube.Caption, error)
	DownloadCaption(ctx context.Context, captionID, accessToken, format string) (string, error)
}

// Handler serves one shared session
type Handler struct {
	sess   *pipeline.Session
	thumbs *thumbnail.Generator
	videos VideoService
	asst   *assistant.Assistant
	// runs outlive the request that started them
	baseCtx context.Context
	log     *zap.SugaredLogger
}

// NewHandler wires the API. ctx bounds background generations.
func NewHandler(ctx context.Context, sess *pipeline.Session, thumbs *thumbnail.Generator, videos VideoService, chat *assistant.Assistant, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		sess:    sess,
		thumbs:  thumbs,
		videos:  videos,
		asst:    chat,
		baseCtx: ctx,
		log:     logger.Named("http"),
	}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

type generateRequest struct {
	Input   string `json:"input"`
	Mode    string `json:"mode"`
	Context string `json:"context"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "input is required")
		return
	}
	mode := types.ModeScript
	if strings.TrimSpace(req.Mode) != "" {
		m, err := types.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		mode = m
	}

	gen := h.sess.Start(h.baseCtx, types.PipelineRequest{
		RawInput:    req.Input,
		Mode:        mode,
		ContextHint: req.Context,
	})
	writeSuccess(w, http.StatusAccepted, map[string]any{"generation": gen})
}

func (h *Handler) getSession(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.sess.Snapshot())
}

// events streams session events as server-sent events until the client leaves
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming unsupported")
		return
	}

	ch, cancel := h.sess.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Warnf("Encoding event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

type thumbnailRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

func (h *Handler) thumbnails(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	images, err := h.thumbs.Generate(r.Context(), req.Prompt, req.Size)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"images": images})
}

func (h *Handler) video(w http.ResponseWriter, r *http.Request) {
	id, ok := youtube.ResolveVideoID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid video id")
		return
	}
	v, err := h.videos.VideoDetails(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "video not found")
		return
	}
	writeSuccess(w, http.StatusOK, v)
}

func (h *Handler) listCaptions(w http.ResponseWriter, r *http.Request) {
	id, ok := youtube.ResolveVideoID(r.URL.Query().Get("video"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "video must be a YouTube URL or video id")
		return
	}
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	tracks, err := h.videos.ListCaptions(r.Context(), id, token)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"videoId": id, "captions": tracks})
}

type captionResponse struct {
	ID         string                 `json:"id"`
	Format     string                 `json:"format"`
	Track      string                 `json:"track"`
	Transcript []types.TranscriptItem `json:"transcript,omitempty"`
	Text       string                 `json:"text,omitempty"`
}

func (h *Handler) downloadCaption(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "vtt"
	}

	id := chi.URLParam(r, "id")
	track, err := h.videos.DownloadCaption(r.Context(), id, token, format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := captionResponse{ID: id, Format: format, Track: track}
	items, err := captions.Parse(format, track)
	switch {
	case err == nil:
		resp.Transcript = items
		resp.Text = captions.PlainText(items)
	case errors.Is(err, captions.ErrNoCues):
	default:
		h.log.Warnf("Caption %s could not be parsed: %v", id, err)
	}
	writeSuccess(w, http.StatusOK, resp)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	reply, err := h.asst.Send(r.Context(), req.Message)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"reply": reply})
}

func (h *Handler) chatHistory(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"history": h.asst.History()})
}

func (h *Handler) resetChat(w http.ResponseWriter, _ *http.Request) {
	h.asst.Reset()
	writeMessage(w, http.StatusOK, "chat reset")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf("%s: %v", code, err)
	}
	writeError(w, status, code, msg)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
