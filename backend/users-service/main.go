package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"taskboard-project/backend/users-service/handlers"
	"taskboard-project/backend/users-service/logging"
	"taskboard-project/backend/users-service/middleware"
	"taskboard-project/backend/users-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Users Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Info("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB.")

	userCollection := client.Database(os.Getenv("MONGO_DB_NAME")).Collection("users")

	blackList, err := services.LoadBlackList("blacklist.txt")
	if err != nil {
		logging.Logger.Warnf("Event ID: BLACKLIST_LOAD_WARNING, Description: Password blacklist not loaded: %v", err)
		blackList = map[string]bool{}
	}

	userService := services.NewUserService(userCollection, blackList)
	userHandler := handlers.UserHandler{UserService: userService}
	loginHandler := handlers.LoginHandler{UserService: userService}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", userHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/users/register", userHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/users/login", loginHandler.Login).Methods(http.MethodPost)
	r.Handle("/api/users/me", middleware.JWTAuthMiddleware(http.HandlerFunc(userHandler.GetProfile))).Methods(http.MethodGet)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", serverPort),
		Handler:      enableCORS(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
