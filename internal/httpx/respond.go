package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON body. HTML escaping is disabled so URL-bearing
// fields keep their slashes as-is.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Status writes a bare status code with an empty body.
func Status(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
