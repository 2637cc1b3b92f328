package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/medication-identifier/logging"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type resolveRequest struct {
	Name string `json:"name"`
}

type aggregateRequest struct {
	Names []string `json:"names"`
}

// ResolveV1 identifies one medication name.
// GET /v1/resolve?name=... or POST /v1/resolve {"name": "..."}
func (h *Handler) ResolveV1(w http.ResponseWriter, r *http.Request) {
	var name string

	switch r.Method {
	case http.MethodGet:
		if !r.URL.Query().Has("name") {
			h.RespondWithError(w, http.StatusBadRequest, "Missing name parameter")
			return
		}
		name = r.URL.Query().Get("name")
	default:
		var req resolveRequest
		if err := decodeJSON(r, &req); err != nil {
			h.respondWithBodyError(w, err)
			return
		}
		name = req.Name
	}

	if err := h.validator.ValidateName(name); err != nil {
		logging.Warn("Unusual user input", "name", truncate(name, 64), "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.resolver.Resolve(r.Context(), name)
	h.RespondWithJSON(w, http.StatusOK, result)
}

// AggregateV1 groups a batch of names by active ingredient and class.
// The body is either JSON {"names": [...]} or text/plain with one name per
// line; text bodies that are not valid UTF-8 are read as ISO-8859-1.
func (h *Handler) AggregateV1(w http.ResponseWriter, r *http.Request) {
	names, err := readNames(r)
	if err != nil {
		h.respondWithBodyError(w, err)
		return
	}

	if err := h.validator.ValidateBatch(names); err != nil {
		logging.Warn("Rejected aggregation batch", "size", len(names), "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.aggregator.GroupByActiveIngredient(r.Context(), names)
	if err != nil {
		// The only failure is cancellation: the client is gone or timed out
		logging.Info("Aggregation aborted", "size", len(names), "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Request canceled")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, report)
}

func readNames(r *http.Request) ([]string, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errUnsupportedMedia
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		var req aggregateRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return req.Names, nil

	case "text/plain", "text/csv":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return parseNameLines(body)

	default:
		return nil, errUnsupportedMedia
	}
}

// parseNameLines splits a text body into names, one per line. Blank lines
// are skipped and CRLF line endings accepted.
func parseNameLines(body []byte) ([]string, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	if !utf8.Valid(body) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err != nil {
			return nil, errMalformedBody
		}
		body = decoded
	}

	var names []string
	for line := range strings.Lines(string(body)) {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

var (
	errMalformedBody    = errors.New("malformed request body")
	errUnsupportedMedia = errors.New("unsupported content type")
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errMalformedBody
	}
	if dec.More() {
		return errMalformedBody
	}
	return nil
}

func (h *Handler) respondWithBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, errUnsupportedMedia):
		h.RespondWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or text/plain")
	default:
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
