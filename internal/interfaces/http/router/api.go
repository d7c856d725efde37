package router

import (
	"github.com/wbpos/backend/internal/interfaces/http/handler"
)

// Handlers bundles the tracker API handlers. A nil handler leaves its
// domain unmounted.
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Tracking  *handler.TrackingHandler
	Positions *handler.PositionsHandler
	System    *handler.SystemHandler
}

// APIGroups builds the domain groups of the tracker API
func APIGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Catalog != nil {
		groups = append(groups, NewDomainGroup("catalog", "/catalog").
			POST("/products", h.Catalog.FetchProducts))
	}

	if h.Tracking != nil {
		groups = append(groups, NewDomainGroup("tracking", "/tracking").
			GET("/config", h.Tracking.GetConfig).
			PUT("/config", h.Tracking.SaveConfig).
			POST("/check", h.Tracking.RunCheck).
			GET("/table", h.Tracking.GetTable))
	}

	if h.Positions != nil {
		groups = append(groups, NewDomainGroup("positions", "/positions").
			POST("", h.Positions.Sample))
	}

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping))
	}

	return groups
}

// RegisterAPI mounts every group from APIGroups and returns the route table
func (r *Router) RegisterAPI(h Handlers) []RouteInfo {
	var routes []RouteInfo
	for _, g := range APIGroups(h) {
		r.Register(g)
		routes = append(routes, g.Routes(r.BasePath())...)
	}
	return routes
}
