package api

// Endpoint is one end of a route request: either a node id or a free
// coordinate that is snapped to the nearest node.
type Endpoint struct {
	Node *uint32  `json:"node,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start Endpoint `json:"start"`
	Goal  Endpoint `json:"goal"`
}

// routeQuery holds the query parameters of POST /api/v1/route.
type routeQuery struct {
	Format string `json:"format" validate:"omitempty,oneof=json geojson"`
}

// nearestQuery holds the query parameters of GET /api/v1/nearest.
type nearestQuery struct {
	X float64 `json:"x" validate:"finite"`
	Y float64 `json:"y" validate:"finite"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Nodes    []uint32   `json:"nodes"`
	Cost     float64    `json:"cost"`
	Turns    []TurnJSON `json:"turns"`
	Polyline string     `json:"polyline"`
}

// TurnJSON is the instruction at one route node.
type TurnJSON struct {
	Node        uint32  `json:"node"`
	Kind        string  `json:"kind"`
	Angle       float64 `json:"angle,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Description string  `json:"description"`
}

// NearestResponse is the JSON response for GET /api/v1/nearest.
type NearestResponse struct {
	Node     uint32  `json:"node"`
	Distance float64 `json:"distance"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
