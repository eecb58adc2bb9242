package materials

import (
	"net/http"

	"H2Tank/internal/web"
)

type Handler struct {
	Library *Library
}

// List returns the whole library.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, h.Library)
}
