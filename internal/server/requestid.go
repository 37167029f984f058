package server

import (
	"log"
	"net/http"

	"github.com/google/uuid"
)

// RequestID is middleware that assigns each incoming request a UUID
// handle, echoes it back as the X-Request-Id header, and logs it alongside
// the method and path, mirroring tunaq's use of uuid for entity IDs but
// applied to the request itself rather than a stored row.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		log.Printf("INFO  [%s] %s %s", id, req.Method, req.URL.Path)
		next.ServeHTTP(w, req)
	})
}
