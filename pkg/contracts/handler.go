package contracts

import "net/http"

// Handler is implemented by every HTTP vertical so the application can
// mount it without knowing its routes.
type Handler interface {
	RegisterRoutes(mux *http.ServeMux)
}
