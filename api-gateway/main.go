package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
)

func envOr(envKey, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func main() {
	mux := http.NewServeMux()

	tasksService := envOr("TASKS_SERVICE_URL", "http://tasks-service:8002")
	usersService := envOr("USERS_SERVICE_URL", "http://users-service:8001")
	notificationsService := envOr("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8004")

	anyRole := []string{"manager", "member"}

	// Task routes: every authenticated user may call them; the creator-only
	// rule for update/delete is enforced in the tasks service itself.
	mux.Handle("/api/tasks", authMiddleware(reverseProxyURL(tasksService), anyRole))
	mux.Handle("/api/tasks/", authMiddleware(reverseProxyURL(tasksService), anyRole))

	// Users service: register and login are the unauthenticated edge.
	mux.Handle("/api/users/register", reverseProxyURL(usersService))
	mux.Handle("/api/users/login", reverseProxyURL(usersService))
	mux.Handle("/api/users/me", authMiddleware(reverseProxyURL(usersService), anyRole))

	mux.Handle("/api/notifications", authMiddleware(reverseProxyURL(notificationsService), anyRole))
	mux.Handle("/api/notifications/", authMiddleware(reverseProxyURL(notificationsService), anyRole))

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := envOr("SERVER_PORT", "8000")
	http.ListenAndServe(":"+port, enableCORS(mux))
}

func reverseProxyURL(target string) http.Handler {
	url, _ := url.Parse(target)
	proxy := httputil.NewSingleHostReverseProxy(url)

	proxy.ModifyResponse = func(response *http.Response) error {
		response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role, X-User-Id")
		return nil
	}

	return proxy
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role, X-User-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
