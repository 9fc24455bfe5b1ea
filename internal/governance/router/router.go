// Package router wires the governance handlers onto a ServeMux
package router

import (
	"net/http"

	"github.com/zlovtnik/docgov/internal/governance/handlers"
)

// HandlerSet contains the governance handlers
type HandlerSet struct {
	DocumentHandler *handlers.DocumentHandler
	AuditHandler    *handlers.AuditHandler
}

// GovernanceRouter handles routing for document governance endpoints
type GovernanceRouter struct {
	mux      *http.ServeMux
	handlers HandlerSet
}

// NewGovernanceRouter creates a new GovernanceRouter.
// Panics if mux is nil.
func NewGovernanceRouter(mux *http.ServeMux, handlers HandlerSet) *GovernanceRouter {
	if mux == nil {
		panic("nil mux passed to NewGovernanceRouter")
	}
	return &GovernanceRouter{mux: mux, handlers: handlers}
}

// RegisterRoutes registers all governance routes with the mux.
// Auth middleware is applied by the caller.
func (r *GovernanceRouter) RegisterRoutes() {
	if d := r.handlers.DocumentHandler; d != nil {
		r.mux.HandleFunc("POST /api/v1/documents", d.Submit)
		r.mux.HandleFunc("GET /api/v1/documents", d.List)
		r.mux.HandleFunc("GET /api/v1/documents/expiring", d.ListExpiring)
		r.mux.HandleFunc("GET /api/v1/documents/{id}", d.Get)
		r.mux.HandleFunc("GET /api/v1/documents/{id}/expiry", d.Expiry)

		// Approval chain
		r.mux.HandleFunc("POST /api/v1/documents/{id}/levels/{level}/approve", d.Approve)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/levels/{level}/reject", d.Reject)

		// Versions
		r.mux.HandleFunc("GET /api/v1/documents/{id}/versions", d.ListVersions)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/versions", d.CreateVersion)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/versions/{version}/restore", d.RestoreVersion)

		// Lifecycle
		r.mux.HandleFunc("POST /api/v1/documents/{id}/resubmit", d.Resubmit)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/extend", d.Extend)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/renew", d.Renew)
		r.mux.HandleFunc("POST /api/v1/documents/{id}/archive", d.Archive)
	}

	if a := r.handlers.AuditHandler; a != nil {
		r.mux.HandleFunc("GET /api/v1/documents/{id}/audit", a.ListByDocument)
	}
}
