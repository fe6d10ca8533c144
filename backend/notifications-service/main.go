package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"taskboard-project/backend/notifications-service/handlers"
	"taskboard-project/backend/notifications-service/logging"
	"taskboard-project/backend/notifications-service/repositories"
	"taskboard-project/backend/notifications-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Notifications Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	repo, err := repositories.NewNotificationRepo()
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Cassandra connection failed: %v", err)
	}
	defer repo.CloseSession()

	notificationService := services.NewNotificationService(repo)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()
	r.HandleFunc("/api/health", notificationHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications", notificationHandler.CreateNotification).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications/read", notificationHandler.MarkNotificationAsRead).Methods(http.MethodPatch)
	r.HandleFunc("/api/notifications/{username}", notificationHandler.GetNotificationsByUsername).Methods(http.MethodGet)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", serverPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
