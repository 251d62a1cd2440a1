// Package api exposes digitization over HTTP.
//
// # Routes
//
//	GET  /healthz            liveness check
//	POST /api/v1/digitize    multipart upload, returns calibrated series
//	POST /upload             same handler under the legacy demo route
//
// Uploads carry the image in the "file" field. Calibration comes either from
// a "params" field holding {"calibration": ..., "options": ...} as JSON, or
// from the x_min, x_max, y_min and y_max fields, which default to 0..10 and
// are applied as axis ranges.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/ironsheep/plot-digitizer/internal/digitize"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// DefaultMaxUploadBytes caps the multipart request size.
const DefaultMaxUploadBytes = 16 << 20

// Config configures the router.
type Config struct {
	// Options are the defaults for requests that carry none.
	Options digitize.Options

	// Workers bounds concurrent digitizations. Zero means one.
	Workers int

	// MaxUploadBytes bounds the request body. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64

	Logger zerolog.Logger
}

// Params is the JSON form of the "params" field.
type Params struct {
	Calibration *digitize.Calibration `json:"calibration"`
	Options     *digitize.Options     `json:"options,omitempty"`
}

// Response is the body of every digitize reply.
type Response struct {
	Success  bool     `json:"success"`
	Filename string   `json:"filename,omitempty"`
	Results  *Results `json:"results,omitempty"`
	Error    string   `json:"error,omitempty"`
	Stage    string   `json:"stage,omitempty"`
}

// Results is the payload of a successful reply.
type Results struct {
	Series     []digitize.SeriesResult `json:"series"`
	PointCount int                     `json:"point_count"`
}

// Handler serves digitization requests.
type Handler struct {
	log       zerolog.Logger
	defaults  digitize.Options
	sem       *semaphore.Weighted
	maxUpload int64
}

// NewHandler returns a Handler for cfg.
func NewHandler(cfg Config) *Handler {
	workers := max(cfg.Workers, 1)
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		log:       cfg.Logger,
		defaults:  cfg.Options,
		sem:       semaphore.NewWeighted(int64(workers)),
		maxUpload: maxUpload,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg Config) *gin.Engine {
	h := NewHandler(cfg)

	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(h.log))
	e.MaxMultipartMemory = h.maxUpload

	e.GET("/healthz", h.Health)
	v1 := e.Group("/api").
		Group("/v1")
	v1.POST("/digitize", h.Digitize)
	e.POST("/upload", h.Digitize)
	return e
}

// requestLogger logs one line per request at info level.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Digitize decodes the uploaded chart and returns its calibrated series.
func (h *Handler) Digitize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, err := c.FormFile("file")
	if err != nil {
		h.log.Debug().Err(err).Msg("read file from form")
		c.JSON(http.StatusBadRequest, Response{Error: fmt.Sprintf("failed to read form file: %v", err), Stage: digitize.StageInput})
		return
	}

	cal, opts, err := h.params(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Filename: file.Filename, Error: err.Error(), Stage: digitize.StageCalibration})
		return
	}

	ctx := h.log.WithContext(c.Request.Context())
	if err := h.sem.Acquire(ctx, 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{Filename: file.Filename, Error: err.Error()})
		return
	}
	defer h.sem.Release(1)

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Filename: file.Filename, Error: fmt.Sprintf("failed to open form file: %v", err), Stage: digitize.StageInput})
		return
	}
	defer f.Close()

	buf, format, err := imaging.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Filename: file.Filename, Error: err.Error(), Stage: digitize.StageInput})
		return
	}
	h.log.Debug().Str("filename", file.Filename).Str("format", format).Int("width", buf.Width).Int("height", buf.Height).Msg("decoded upload")

	res, err := digitize.Digitize(ctx, buf, cal, opts)
	if err != nil {
		status, stage := classify(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("filename", file.Filename).Msg("digitize failed")
		}
		c.JSON(status, Response{Filename: file.Filename, Error: err.Error(), Stage: stage})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:  true,
		Filename: file.Filename,
		Results:  &Results{Series: res.Series, PointCount: res.PointCount},
	})
}

// params reads the calibration and options of a request.
func (h *Handler) params(c *gin.Context) (digitize.Calibration, digitize.Options, error) {
	if raw := c.PostForm("params"); raw != "" {
		var p Params
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return digitize.Calibration{}, digitize.Options{}, fmt.Errorf("invalid params: %w", err)
		}
		if p.Calibration == nil {
			return digitize.Calibration{}, digitize.Options{}, errors.New("invalid params: calibration is required")
		}
		opts := h.defaults
		if p.Options != nil {
			opts = *p.Options
		}
		return *p.Calibration, opts, nil
	}

	var v [4]float64
	for i, f := range []struct{ name, def string }{
		{"x_min", "0"}, {"x_max", "10"}, {"y_min", "0"}, {"y_max", "10"},
	} {
		x, err := strconv.ParseFloat(c.DefaultPostForm(f.name, f.def), 64)
		if err != nil {
			return digitize.Calibration{}, digitize.Options{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		v[i] = x
	}
	return digitize.RangeCalibration(v[0], v[1], v[2], v[3]), h.defaults, nil
}

// classify maps a digitize error onto an HTTP status and the failing stage.
func classify(err error) (int, string) {
	var de *digitize.Error
	if !errors.As(err, &de) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return http.StatusServiceUnavailable, ""
		}
		return http.StatusInternalServerError, ""
	}
	switch de.Kind {
	case digitize.MalformedInput, digitize.InvalidCalibration:
		return http.StatusBadRequest, de.Stage
	case digitize.AxisNotFound:
		return http.StatusUnprocessableEntity, de.Stage
	}
	return http.StatusInternalServerError, de.Stage
}
