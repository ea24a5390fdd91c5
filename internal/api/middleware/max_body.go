package middleware

import (
	"mime"
	"net/http"

	"github.com/pxtester/showcase/internal/api"
)

// BodyLimit caps request bodies. Multipart uploads get their own, larger
// limit so an image at the upload cap still fits with its form framing.
// A non-positive limit disables the cap for that kind of body.
func BodyLimit(limit, multipartLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			max := limit
			if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
				max = multipartLimit
			}
			if max <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > max {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
