package cluster

import (
	"fmt"
	"net/http"
)

// NewBasicHealthHandler answers the Consul health check. Any process that is
// able to serve this request is considered alive.
func NewBasicHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Service is alive.")
	}
}
