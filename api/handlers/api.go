package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/announcements"
	"github.com/Benevo-clic/benevoclic-api/api"
	"github.com/Benevo-clic/benevoclic-api/api/scheduler"
	"github.com/Benevo-clic/benevoclic-api/cache"
	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/identity"
	"github.com/Benevo-clic/benevoclic-api/metrics"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/query"
	"github.com/Benevo-clic/benevoclic-api/reconcile"
	"github.com/Benevo-clic/benevoclic-api/registration"
	"github.com/Benevo-clic/benevoclic-api/storage"
)

// App stores the router, the handlers and the connections they share
type App struct {
	Router  *mux.Router
	Config  config.Config
	Metrics *metrics.Registry
	Auth    *api.Authenticator

	Announcements Announcement
	Registrations Registration
	Favorites     Favorite
	Admin         Admin

	client    databases.ClientHelper
	dbHelper  databases.DatabaseHelper
	redis     *redis.Client
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware(a.Metrics))

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	// reconciliation scans whole collections so it runs outside the request timeout
	admin := r.PathPrefix("/api/v1/admin").Subrouter()
	admin.Handle("/reconcile/favorites", a.protect(a.Admin.ReconcileFavoritesHandler, models.RoleAdmin)).Methods("POST")
	admin.Handle("/reconcile/volunteers", a.protect(a.Admin.ReconcileVolunteersHandler, models.RoleAdmin)).Methods("POST")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	if a.Config.RequestTimeout > 0 {
		apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))
	}

	var search http.Handler = http.HandlerFunc(a.Announcements.FilterHandler)
	if a.Config.SearchRateLimit > 0 {
		search = httprate.LimitByIP(a.Config.SearchRateLimit, time.Minute)(search)
	}
	apiCreate.Handle("/announcements/filter", search).Methods("POST")

	apiCreate.HandleFunc("/announcements", a.Announcements.ListHandler).Methods("GET")
	apiCreate.Handle("/announcements", a.protect(a.Announcements.CreateHandler, models.RoleAssociation, models.RoleAdmin)).Methods("POST")
	apiCreate.HandleFunc("/announcements/association/{associationId}", a.Announcements.ListByAssociationHandler).Methods("GET")
	apiCreate.Handle("/announcements/association/{associationId}", a.protect(a.Announcements.DeleteByAssociationHandler, models.RoleAssociation, models.RoleAdmin)).Methods("DELETE")
	apiCreate.HandleFunc("/announcements/{announcementId}", a.Announcements.GetHandler).Methods("GET")
	apiCreate.Handle("/announcements/{announcementId}", a.protect(a.Announcements.UpdateHandler, models.RoleAssociation, models.RoleAdmin)).Methods("PATCH")
	apiCreate.Handle("/announcements/{announcementId}", a.protect(a.Announcements.DeleteHandler, models.RoleAssociation, models.RoleAdmin)).Methods("DELETE")
	apiCreate.Handle("/announcements/{announcementId}/status", a.protect(a.Announcements.UpdateStatusHandler, models.RoleAssociation, models.RoleAdmin)).Methods("PATCH")
	apiCreate.Handle("/announcements/{announcementId}/image", a.protect(a.Announcements.UploadImageHandler, models.RoleAssociation, models.RoleAdmin)).Methods("PUT")

	apiCreate.Handle("/announcements/{announcementId}/volunteers", a.protect(a.Registrations.RegisterVolunteerHandler)).Methods("POST")
	apiCreate.Handle("/announcements/{announcementId}/volunteers/{personId}", a.protect(a.Registrations.RemoveVolunteerHandler)).Methods("DELETE")
	apiCreate.Handle("/announcements/{announcementId}/volunteers-waiting", a.protect(a.Registrations.RegisterVolunteerWaitingHandler)).Methods("POST")
	apiCreate.Handle("/announcements/{announcementId}/volunteers-waiting/{personId}", a.protect(a.Registrations.RemoveVolunteerWaitingHandler)).Methods("DELETE")
	apiCreate.Handle("/announcements/{announcementId}/participants", a.protect(a.Registrations.RegisterParticipantHandler)).Methods("POST")
	apiCreate.Handle("/announcements/{announcementId}/participants/{personId}", a.protect(a.Registrations.RemoveParticipantHandler)).Methods("DELETE")
	apiCreate.Handle("/volunteers/{personId}/announcements", a.protect(a.Registrations.RemoveVolunteerEverywhereHandler, models.RoleAdmin)).Methods("DELETE")
	apiCreate.Handle("/participants/{personId}/announcements", a.protect(a.Registrations.RemoveParticipantEverywhereHandler, models.RoleAdmin)).Methods("DELETE")

	apiCreate.Handle("/favorites", a.protect(a.Favorites.AddFavoriteHandler)).Methods("POST")
	apiCreate.Handle("/favorites/volunteer/{volunteerId}", a.protect(a.Favorites.ListFavoritesHandler)).Methods("GET")
	apiCreate.Handle("/favorites/{volunteerId}/{announcementId}", a.protect(a.Favorites.RemoveFavoriteHandler)).Methods("DELETE")

	return r
}

// protect requires a bearer token and, when roles are given, one of them
func (a *App) protect(h http.HandlerFunc, roles ...string) http.Handler {
	var next http.Handler = h
	if len(roles) > 0 {
		next = api.RequireRole(roles...)(next)
	}
	return a.Auth.Middleware(next)
}

// Initialize is invoked by main to connect with the database and the cache, wire the
// services and create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect(ctx)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	zap.S().Info("benevoclic-api has connected to the database")

	announcementDB := databases.NewAnnouncementDatabase(a.dbHelper)
	favoriteDB := databases.NewFavoriteDatabase(a.dbHelper)
	if err := announcementDB.EnsureIndexes(ctx); err != nil {
		zap.S().Errorw("failed to create announcement indexes", "error", err)
		return err
	}
	if err := favoriteDB.EnsureIndexes(ctx); err != nil {
		zap.S().Errorw("failed to create favorite indexes", "error", err)
		return err
	}

	a.Metrics = metrics.New()

	// the cache is optional, without redis every read goes to mongo
	a.redis, err = cache.NewRedis(a.Config.Redis)
	if err != nil {
		zap.S().Warnw("redis unavailable, caching disabled", "addr", a.Config.Redis.Addr, "error", err)
		a.redis = nil
	}
	announcementCache := cache.New(a.redis, a.Config.Redis.TTL, a.Metrics)

	var images storage.ObjectStorage
	cld, err := storage.NewCloudinary(a.Config.Cloudinary)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		zap.S().Warn("cloudinary is not configured, image uploads are disabled")
	case err != nil:
		zap.S().Errorw("failed to set up cloudinary", "error", err)
		return err
	default:
		images = cld
	}

	validate := announcements.NewValidator()
	volunteerDB := databases.NewVolunteerDatabase(a.dbHelper)
	bulk := registration.NewBulkOperator(announcementDB, announcementCache, a.Metrics)
	reconciler := reconcile.New(favoriteDB, announcementDB, volunteerDB, bulk, a.Metrics)

	a.Auth = api.NewAuthenticator(a.Config.JWT, identity.NewMongoResolver(databases.NewUserDatabase(a.dbHelper)))
	a.Announcements = Announcement{
		Service:  announcements.NewService(announcementDB, announcementCache, images, validate),
		Searcher: query.NewSearcher(query.NewExecutor(announcementDB, a.Metrics), validate),
	}
	a.Registrations = Registration{
		Service: registration.NewService(announcementDB, announcementCache, a.Metrics),
		Bulk:    bulk,
	}
	a.Favorites = Favorite{Service: announcements.NewFavoritesService(favoriteDB, announcementDB, volunteerDB, validate)}
	a.Admin = Admin{Reconciler: reconciler}

	a.scheduler = scheduler.NewScheduler(
		databases.NewSchedulerLockDatabase(a.dbHelper),
		scheduler.ReconcileTasks(a.Config.Reconcile, reconciler)...,
	)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Close stops the scheduler and releases the connections opened by Initialize
func (a *App) Close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.S().Warnw("failed to close redis", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{
		Alive: true,
	})
}
