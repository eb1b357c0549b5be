package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	"planar_router/pkg/geo"
	"planar_router/pkg/guidance"
	"planar_router/pkg/routing"
)

const maxBodyBytes = 4096

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router   routing.Router
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, log *zap.Logger) *Handlers {
	return &Handlers{
		router:   router,
		validate: newValidator(),
		log:      log,
	}
}

// Register mounts the API routes on r.
func (h *Handlers) Register(r *httprouter.Router) {
	r.POST("/api/v1/route", h.HandleRoute)
	r.GET("/api/v1/nearest", h.HandleNearest)
	r.GET("/api/v1/health", h.HandleHealth)
	r.GET("/api/v1/stats", h.HandleStats)
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "", "content type must be application/json")
		return
	}

	q := routeQuery{Format: r.URL.Query().Get("format")}
	if err := h.validate.Struct(q); err != nil {
		field, msg := firstViolation(err)
		writeError(w, http.StatusBadRequest, "invalid_request", field, msg)
		return
	}

	var req RouteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		field, msg := firstViolation(err)
		writeError(w, http.StatusBadRequest, "invalid_request", field, msg)
		return
	}

	start, ok := h.resolve(w, req.Start, "start")
	if !ok {
		return
	}
	goal, ok := h.resolve(w, req.Goal, "goal")
	if !ok {
		return
	}

	result, err := h.router.Route(r.Context(), start, goal)
	if err != nil {
		h.writeRouteError(w, err)
		return
	}

	if q.Format == "geojson" {
		writeJSON(w, http.StatusOK, "application/geo+json", result.GeoJSON())
		return
	}
	writeJSON(w, http.StatusOK, "application/json", newRouteResponse(result))
}

// resolve turns an endpoint into a node id, snapping free coordinates.
// It writes the error response itself and reports false on failure.
func (h *Handlers) resolve(w http.ResponseWriter, ep Endpoint, field string) (uint32, bool) {
	if ep.Node != nil {
		return *ep.Node, true
	}

	snap, err := h.router.Nearest(geo.NewPoint(*ep.X, *ep.Y))
	if err != nil {
		if errors.Is(err, routing.ErrPointTooFar) {
			writeError(w, http.StatusUnprocessableEntity, "point_too_far", field, "")
			return 0, false
		}
		h.log.Error("snap failed", zap.String("field", field), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "", "")
		return 0, false
	}
	return snap.Node, true
}

func (h *Handlers) writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidNode):
		writeError(w, http.StatusBadRequest, "invalid_node", "", err.Error())
	case errors.Is(err, routing.ErrNotReachable):
		writeError(w, http.StatusNotFound, "no_route_found", "", "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "", "")
	default:
		h.log.Error("route failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "", "")
	}
}

// HandleNearest handles GET /api/v1/nearest?x=..&y=..
func (h *Handlers) HandleNearest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q nearestQuery
	var err error

	query := r.URL.Query()
	if q.X, err = strconv.ParseFloat(query.Get("x"), 64); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "x", "x is required and must be a number")
		return
	}
	if q.Y, err = strconv.ParseFloat(query.Get("y"), 64); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "y", "y is required and must be a number")
		return
	}
	if err := h.validate.Struct(q); err != nil {
		field, msg := firstViolation(err)
		writeError(w, http.StatusBadRequest, "invalid_request", field, msg)
		return
	}

	snap, err := h.router.Nearest(geo.NewPoint(q.X, q.Y))
	if err != nil {
		if errors.Is(err, routing.ErrPointTooFar) {
			writeError(w, http.StatusUnprocessableEntity, "point_too_far", "", "")
			return
		}
		h.log.Error("snap failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "", "")
		return
	}

	writeJSON(w, http.StatusOK, "application/json", NearestResponse{Node: snap.Node, Distance: snap.Dist})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, "application/json", HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, "application/json", h.router.Stats())
}

func newRouteResponse(res *routing.RouteResult) RouteResponse {
	resp := RouteResponse{
		Nodes: res.Nodes,
		Cost:  res.Cost,
		Turns: make([]TurnJSON, len(res.Turns)),
	}
	for i, t := range res.Turns {
		tj := TurnJSON{
			Node:        res.Nodes[i],
			Kind:        t.Kind.String(),
			Description: t.String(),
		}
		if t.Kind == guidance.Turning {
			tj.Angle = t.Angle
			tj.Direction = t.Direction.String()
		}
		resp.Turns[i] = tj
	}

	// go-polyline expects [lat, lng] order, so y goes first.
	coords := make([][]float64, len(res.Geometry))
	for i, p := range res.Geometry {
		coords[i] = []float64{p[1], p[0]}
	}
	resp.Polyline = string(polyline.EncodeCoords(coords))
	return resp
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field, msg string) {
	writeJSON(w, status, "application/json", ErrorResponse{Error: code, Field: field, Message: msg})
}
