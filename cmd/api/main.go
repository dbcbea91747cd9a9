package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/quickchat/internal/auth"
	"github.com/example/quickchat/internal/data"
	"github.com/example/quickchat/internal/db"
	"github.com/example/quickchat/internal/logger"
	"github.com/example/quickchat/internal/media"
	"github.com/example/quickchat/internal/middleware"
	"github.com/example/quickchat/internal/ws"
)

func main() {
	// Read configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		logger.Fatal("MONGODB_URI must be set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	jwtKeysEnv := os.Getenv("JWT_KEYS") // optional: format kid:secret,kid2:secret2
	jwtActiveKid := os.Getenv("JWT_ACTIVE_KID")
	if jwtKeysEnv == "" && jwtSecret == "" {
		logger.Fatal("either JWT_SECRET or JWT_KEYS must be set")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	// Initialize database
	dbClient, err := db.New(ctx, mongoURI)
	if err != nil {
		logger.Fatal("failed to connect to DB", zap.Error(err))
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	// Ensure indexes exist
	if err := dbClient.CreateIndexes(ctx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	// Create stores
	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	// Initialize auth manager (tokens valid for 24 hours). If JWT_KEYS is
	// supplied we parse kid:secret pairs so token rotation is possible;
	// otherwise fall back to the single JWT_SECRET value.
	var jwtMgr *auth.JWTManager
	if jwtKeysEnv != "" {
		keyMap := map[string]string{}
		for _, p := range strings.Split(jwtKeysEnv, ",") {
			if p == "" {
				continue
			}
			parts := strings.SplitN(p, ":", 2)
			if len(parts) != 2 {
				logger.Fatal("invalid JWT_KEYS entry", zap.String("entry", p))
			}
			keyMap[parts[0]] = parts[1]
		}
		jwtMgr = auth.NewJWTManagerFromKeys(keyMap, jwtActiveKid, 24*time.Hour)
	} else {
		jwtMgr = auth.NewJWTManager(jwtSecret, 24*time.Hour)
	}

	// Rate limiter for the signup and login endpoints. RATE_LIMIT_RPM
	// controls requests per minute for these sensitive endpoints.
	rateRPM := 10
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateRPM = n
		}
	}
	limiterStore := middleware.NewLimiterStore(rateRPM, 3, 1*time.Minute)
	defer limiterStore.Stop()

	// Image store; optional, image payloads fail cleanly without it.
	var uploader media.Uploader
	if cldURL := os.Getenv("CLOUDINARY_URL"); cldURL != "" {
		cld, err := media.NewCloudinary(cldURL)
		if err != nil {
			logger.Fatal("failed to init cloudinary", zap.Error(err))
		}
		uploader = cld
	} else {
		logger.Warn("CLOUDINARY_URL not set; image uploads disabled")
	}

	var allowedOrigins []string
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		allowedOrigins = strings.Split(v, ",")
	}

	// Presence registry, hub and dispatcher: one instance of each for the
	// process, shared by the socket lifecycle and the send path.
	presence := ws.NewRegistry()
	hub := ws.NewHub(presence)
	dispatcher := ws.NewDispatcher(presence, hub)

	srv := newServer(usersStore, msgsStore, jwtMgr, hub, dispatcher, uploader)
	router := srv.routes(limiterStore, allowedOrigins)

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server exit", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}
