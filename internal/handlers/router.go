package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Scroti/want-to-watch/internal/config"
	"github.com/Scroti/want-to-watch/internal/database"
	"github.com/Scroti/want-to-watch/internal/middleware"
	"github.com/Scroti/want-to-watch/internal/services"
)

// Deps is everything the router needs. The auth middlewares are injected so
// tests can replace JWT validation.
type Deps struct {
	Store         *database.Store
	TMDB          MetadataProvider
	TMDBStats     func() map[string]any
	Activities    *services.ActivityWriter
	Notifications *services.NotificationWriter
	RequireAuth   func(http.Handler) http.Handler
	OptionalAuth  func(http.Handler) http.Handler
	Security      config.SecurityConfig
}

func NewRouter(d Deps) http.Handler {
	users := NewUserHandler(d.Store)
	watchlist := NewWatchlistHandler(d.Store, d.Activities)
	reviews := NewReviewHandler(d.Store, d.Activities)
	comments := NewCommentHandler(d.Store)
	follows := NewFollowHandler(d.Store, d.Activities, d.Notifications)
	lists := NewListHandler(d.Store, d.Activities)
	feed := NewFeedHandler(d.Store)
	notifications := NewNotificationHandler(d.Store)
	recommendations := NewRecommendationHandler(d.Store, d.Notifications)
	media := NewMediaHandler(d.TMDB)
	health := NewHealthHandler(d.Store, d.TMDBStats)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if !d.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(d.Security.RateLimitRequests, d.Security.RateLimitWindow))
	}

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public reads; a valid token is used when present.
		r.Group(func(r chi.Router) {
			r.Use(d.OptionalAuth)
			r.Use(middleware.EnsureProfile(d.Store))

			r.Get("/profiles", users.GetProfile)
			r.Get("/profiles/{userId}/stats", users.GetStats)
			r.Get("/users/search", users.SearchUsers)
			r.Get("/users/{userId}/watchlist", users.GetUserWatchlist)
			r.Get("/reviews", reviews.GetReviews)
			r.Get("/comments", comments.GetComments)
			r.Get("/follows", follows.GetFollows)
			r.Get("/lists", lists.GetLists)
			r.Get("/lists/{id}", lists.GetList)
			r.Get("/activities", feed.GetActivities)
			r.Get("/search", media.Search)
			r.Get("/media/{id}", media.GetMedia)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.RequireAuth)

			// Runs before bootstrap so it can report whether it created the row.
			r.Post("/users/auto-create-profile", users.AutoCreateProfile)

			r.Group(func(r chi.Router) {
				r.Use(middleware.EnsureProfile(d.Store))

				r.Post("/profiles", users.UpsertProfile)

				r.Get("/watchlist", watchlist.GetWatchlist)
				r.Post("/watchlist", watchlist.AddItem)
				r.Patch("/watchlist/{id}", watchlist.UpdateItem)
				r.Delete("/watchlist/{id}", watchlist.DeleteItem)

				r.Post("/reviews", reviews.CreateReview)
				r.Patch("/reviews/{id}", reviews.UpdateReview)
				r.Delete("/reviews/{id}", reviews.DeleteReview)
				r.Post("/reviews/{id}/like", reviews.ToggleLike)

				r.Post("/comments", comments.CreateComment)
				r.Delete("/comments/{id}", comments.DeleteComment)

				r.Get("/follows/check", follows.CheckFollow)
				r.Post("/follows", follows.Follow)
				r.Delete("/follows/{userId}", follows.Unfollow)

				r.Post("/lists", lists.CreateList)
				r.Patch("/lists/{id}", lists.UpdateList)
				r.Delete("/lists/{id}", lists.DeleteList)
				r.Post("/lists/{id}/items", lists.AddItem)
				r.Delete("/lists/{id}/items/{mediaId}", lists.RemoveItem)

				r.Get("/notifications", notifications.GetNotifications)
				r.Patch("/notifications", notifications.MarkRead)
				r.Patch("/notifications/{id}/read", notifications.MarkOneRead)

				r.Get("/recommendations", recommendations.GetRecommendations)
				r.Post("/recommendations", recommendations.CreateRecommendation)
			})
		})
	})

	return r
}
