// Package streamserver implements the HTTP MJPEG publisher and status
// endpoint (spec.md §4.8, C8): a chi-routed listener exposing "/" (static
// page), "/stream" (multipart/x-mixed-replace MJPEG), and "/status" (JSON).
package streamserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	cv "gocv.io/x/gocv"

	"github.com/fieldbots/hexapod/pkg/logger"
)

// FrameSource supplies the latest decoded frame; camera.Source satisfies
// this directly.
type FrameSource interface {
	LatestFrame() (cv.Mat, bool)
}

// partInterval caps the stream at ~20 fps (spec.md §4.8: "sleep ~50 ms").
const partInterval = 50 * time.Millisecond

// jpegQuality is the encode quality for streamed parts (spec.md §4.8).
const jpegQuality = 70

// boundary is the multipart boundary token used by both the Content-Type
// header and the part separators (spec.md §6: "boundary=F").
const boundary = "F"

// Server wires a chi router over a FrameSource and StatusProvider.
type Server struct {
	router *chi.Mux
	http   *http.Server

	frames FrameSource
	status StatusProvider
}

// New constructs a Server listening on addr (e.g. ":8080").
func New(addr string, frames FrameSource, status StatusProvider) *Server {
	s := &Server{frames: frames, status: status}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/stream", s.handleStream)
	r.Get("/status", s.handleStatus)
	s.router = r

	s.http = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown is called, mirroring
// the orchestrator's other long-running components. It returns
// http.ErrServerClosed on a clean Shutdown, which callers should treat as
// success.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server (spec.md §5: "shuts down the HTTP
// server" as part of the orchestrator's exit sequence).
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write(indexHTML)
}

// handleStream serves the MJPEG multipart response. A client disconnect
// is detected via the request context and silently ends the handler
// (spec.md §7 ClientDisconnect); it never kills the capture loop upstream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	log := logger.For("streamserver")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(partInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		data, err := s.encodeLatestFrame()
		if err != nil {
			if err != ErrNoFrame {
				log.Error().Err(err).Msg("frame encode failed")
			}
			continue
		}

		if _, err := w.Write([]byte("\r\n--" + boundary + "\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		flusher.Flush()
	}
}

// encodeLatestFrame clones the current frame and encodes it at
// jpegQuality; the clone is always closed before returning.
func (s *Server) encodeLatestFrame() ([]byte, error) {
	mat, ok := s.frames.LatestFrame()
	if !ok {
		return nil, ErrNoFrame
	}
	defer mat.Close()

	buf, err := cv.IMEncodeWithParams(cv.FileExt(".jpg"), mat, []int{cv.IMWriteJpegQuality, jpegQuality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status.Status())
}
