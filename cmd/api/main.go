package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"timewise-backend/internal/ai"
	"timewise-backend/internal/analytics"
	"timewise-backend/internal/auth"
	"timewise-backend/internal/calendar"
	"timewise-backend/internal/config"
	"timewise-backend/internal/db"
	"timewise-backend/internal/roadmaps"
	"timewise-backend/internal/schedule"
	"timewise-backend/internal/tasks"
	"timewise-backend/internal/users"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	log.Println("✅ Connected to PostgreSQL!")

	userStore := users.NewStore(database)
	taskStore := tasks.NewStore(database)
	roadmapStore := roadmaps.NewStore(database)

	recommender, err := ai.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("❌ Failed to create Gemini client:", err)
	}

	log.Println("✅ Gemini client ready, model:", cfg.GeminiModel)

	oauthCfg := calendar.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)

	// Per-user calendar capability built from the user's stored tokens.
	// Refreshed tokens are written back so the next build skips the refresh.
	calendarFor := func(ctx context.Context, ownerID int) (schedule.Calendar, error) {
		u, err := userStore.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		creds := calendar.Credentials{
			AccessToken:  u.AccessToken,
			RefreshToken: u.RefreshToken,
		}
		if u.TokenExpiry != nil {
			creds.Expiry = *u.TokenExpiry
		}
		return calendar.NewService(ctx, oauthCfg, creds, func(ctx context.Context, c calendar.Credentials) error {
			return userStore.SaveGoogleTokens(ctx, ownerID, c.AccessToken, c.RefreshToken, c.Expiry)
		})
	}

	optimizer := &schedule.Optimizer{
		Calendar:    calendarFor,
		Tasks:       taskStore,
		Users:       userStore,
		Recommender: recommender,
		Timeout:     cfg.RecommenderTimeout,
	}
	prioritizer := &schedule.Prioritizer{
		Recommender: recommender,
		Tasks:       taskStore,
	}

	writeEvent := func(ctx context.Context, ownerID int, title string, start, end time.Time, taskType string) error {
		cal, err := calendarFor(ctx, ownerID)
		if err != nil {
			return err
		}
		_, err = cal.CreateEvent(ctx, schedule.Event{Title: title, Start: start, End: end}, taskType)
		return err
	}

	authHandler := auth.NewHandler(userStore, []byte(cfg.JWTSecret))
	taskHandler := tasks.NewHandler(taskStore, writeEvent)
	scheduleHandler := &schedule.Handler{
		Optimizer:   optimizer,
		Prioritizer: prioritizer,
		Tasks:       taskStore,
		Users:       userStore,
		DB:          database,
	}
	roadmapHandler := &roadmaps.Handler{
		Store:     roadmapStore,
		Tasks:     taskStore,
		Users:     userStore,
		Generator: recommender,
		Calendar:  calendarFor,
		DB:        database,
	}

	protect := auth.New([]byte(cfg.JWTSecret))

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", authHandler.Register)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/logout", auth.LogoutHandler())
	mux.HandleFunc("/auth/me", protect.Wrap(authHandler.Me))
	mux.HandleFunc("/auth/preferences", protect.Wrap(authHandler.UpdatePreferences))
	mux.HandleFunc("/auth/google/tokens", protect.Wrap(authHandler.SaveGoogleTokens))
	mux.HandleFunc("/auth/account", protect.Wrap(auth.DeleteAccountHandler(database)))

	// ----- ANALYTICS -----
	mux.HandleFunc("/analytics/app-opened", protect.Wrap(analytics.AppOpenedHandler(database)))

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", protect.Wrap(taskHandler.Collection))
	mux.HandleFunc("/tasks/", protect.Wrap(taskHandler.Item))

	// ----- AI API -----
	mux.HandleFunc("/ai/quick-optimize", protect.Wrap(scheduleHandler.QuickOptimize))
	mux.HandleFunc("/ai/analyze", protect.Wrap(scheduleHandler.Analyze))
	mux.HandleFunc("/ai/suggest-time", protect.Wrap(scheduleHandler.SuggestTime))
	mux.HandleFunc("/ai/prioritize", protect.Wrap(scheduleHandler.Prioritize))
	mux.HandleFunc("/ai/generate-roadmap", protect.Wrap(roadmapHandler.Generate))

	// ----- ROADMAPS & DASHBOARD -----
	mux.HandleFunc("/roadmaps/latest", protect.Wrap(roadmapHandler.Latest))
	mux.HandleFunc("/dashboard", protect.Wrap(scheduleHandler.Dashboard))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	log.Println("🚀 API server is running on", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, handler))
}
