package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api/middleware"
	"github.com/arealens/arealens/internal/api/models"
	"github.com/arealens/arealens/internal/api/response"
	"github.com/arealens/arealens/internal/geometry"
)

// maxBodyBytes bounds request bodies. Large rings arrive as polylines.
const maxBodyBytes = 1 << 20

// Analyzer is the analysis surface the area endpoints need.
type Analyzer interface {
	Aggregate(ctx context.Context, ring geometry.Ring, creds analysis.Credentials) *analysis.Report
	Metrics(ring geometry.Ring) geometry.Metrics
	GeoJSON(ring geometry.Ring) *geojson.Feature
}

// AreaHandler handles polygon analysis endpoints.
type AreaHandler struct {
	analyzer    Analyzer
	credentials analysis.Credentials
}

// NewAreaHandler creates a new AreaHandler. Server credentials are used for
// any provider the request does not supply a credential for.
func NewAreaHandler(analyzer Analyzer, credentials analysis.Credentials) *AreaHandler {
	return &AreaHandler{
		analyzer:    analyzer,
		credentials: credentials,
	}
}

// Analyze handles POST /v1/areas:analyze - full report with every category.
func (h *AreaHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	input, ring, ok := h.decode(w, r)
	if !ok {
		return
	}

	report := h.analyzer.Aggregate(r.Context(), ring, h.mergeCredentials(input.Credentials))

	zerolog.Ctx(r.Context()).Debug().
		Interface("estimated", report.EstimatedCategories()).
		Msg("area report built")

	response.JSON(w, r, http.StatusOK, models.AreaAnalysis{
		RequestID: middleware.GetRequestID(r.Context()),
		Report:    report,
	})
}

// Metrics handles POST /v1/areas:metrics - geometry only, no provider calls.
func (h *AreaHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	_, ring, ok := h.decode(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAreaMetrics(h.analyzer.Metrics(ring)))
}

// GeoJSON handles POST /v1/areas:geojson - the ring as a closed polygon feature.
func (h *AreaHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	_, ring, ok := h.decode(w, r)
	if !ok {
		return
	}

	var feature *geojson.Feature
	if !geometry.IsDegenerate(ring) {
		feature = h.analyzer.GeoJSON(ring)
	}
	if feature == nil {
		response.BadRequest(w, r, "a polygon needs at least three distinct vertices", []models.FieldError{
			{Field: "ring", Message: "at least three distinct vertices are required", Code: models.CodeInvalid},
		})
		return
	}
	response.GeoJSON(w, r, feature)
}

// decode reads and validates the request body, writing a 400 on failure.
func (h *AreaHandler) decode(w http.ResponseWriter, r *http.Request) (models.AreaRequest, geometry.Ring, bool) {
	var input models.AreaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		detail := "invalid JSON body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "request body too large"
		}
		response.BadRequest(w, r, detail, nil)
		return input, nil, false
	}

	ring, fieldErrs := input.Validate()
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid polygon", fieldErrs)
		return input, nil, false
	}
	return input, ring, true
}

func (h *AreaHandler) mergeCredentials(fromRequest map[string]string) analysis.Credentials {
	merged := make(analysis.Credentials, len(h.credentials)+len(fromRequest))
	for name, token := range h.credentials {
		merged[name] = token
	}
	for name, token := range fromRequest {
		if token != "" {
			merged[name] = token
		}
	}
	return merged
}
