package interfaces

import "net/http"

// HTTPHandler is what cmd/server mounts; the gin handler satisfies it.
type HTTPHandler interface {
	http.Handler
}
