package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"inventory-rest-api/pkg/apierror"
	"inventory-rest-api/pkg/response"
)

// Recovery turns a panicking handler into a 500 envelope and logs the stack
// under the request id, so the failure can be matched to the access log line.
// Nothing is written if the handler already sent its headers.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("[Recovery] panic req=%s %s %s: %v\n%s",
				GetRequestID(r.Context()), r.Method, r.URL.Path, rec, debug.Stack())
			if rw.wroteHeader {
				return
			}
			response.Error(rw, apierror.InternalError("internal server error"))
		}()

		next.ServeHTTP(rw, r)
	})
}
