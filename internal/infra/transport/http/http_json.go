package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

const maxBodyBytes = 1 << 20

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = domain.NewError(domain.ErrInvalidInput, "Invalid JSON body.")

// MessageResponse is the body of every error and of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReadJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return errors.Join(ErrInvalidJSON, err)
	}

	return nil
}

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// StatusCode maps an error to the HTTP status of its kind.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the status of err's kind and its client-visible
// message. Errors without a kind are reported as a generic server error.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusCode(err)

	var domainErr *domain.Error
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})

		return
	}

	WriteJSON(w, status, MessageResponse{Message: domainErr.Message})
}
