package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/reconcile"
)

// reconcileTimeout bounds a manual reconciliation pass, which scans whole collections
const reconcileTimeout = 5 * time.Minute

// Admin exposes the manual consistency repair passes
type Admin struct {
	Reconciler *reconcile.Reconciler
}

// ReconcileFavoritesHandler deletes favorites whose announcement no longer exists
func (a Admin) ReconcileFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reconcileTimeout)
	defer cancel()

	result, err := a.Reconciler.ReconcileFavorites(ctx)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ReconcileVolunteersHandler removes volunteers that no longer exist from announcements and favorites
func (a Admin) ReconcileVolunteersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reconcileTimeout)
	defer cancel()

	report, err := a.Reconciler.ReconcileVolunteers(ctx)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
