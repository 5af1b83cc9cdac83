//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"marginalia/internal/platform/config"
	perr "marginalia/internal/platform/errors"

	docs "marginalia/internal/services/api/docs"
)

// docReader is a seam so tests can feed the handler broken JSON
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the generated spec after normalizing it for the UI
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		normalizeOAS(spec, "/api/v1")

		if v := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); v != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + v
				}
			}
		}

		ensureErrorSchema(spec)
		injectDefaultResponses(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// normalizeOAS pins the spec to OAS 3.0.x and gives it a servers array.
// The embedded UI cannot render 3.1 yet, and swag v2 emits it
func normalizeOAS(spec map[string]any, baseURL string) {
	if _, hasSwagger := spec["swagger"]; hasSwagger {
		spec["openapi"] = "3.0.3"
		delete(spec, "swagger")
	}
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": baseURL}}
	}
}

// ensureErrorSchema adds the envelope error model unless the generator
// already emitted one. The fields mirror the runtime wire shape
func ensureErrorSchema(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

func errorExample(status int, text string, code perr.ErrorCode, msg string) map[string]any {
	return map[string]any{
		"description": text,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": status,
					"status":      text,
					"code":        int(code),
					"error":       msg,
					"request_id":  "a1b2c3d4e5f6/req-000042",
				},
			},
		},
	}
}

// injectDefaultResponses adds the 400 and 500 answers every envelope
// endpoint can produce, without clobbering responses a handler documented
func injectDefaultResponses(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	defaults := map[string]map[string]any{
		"400": errorExample(http.StatusBadRequest, "Bad Request", perr.ErrorCodeValidation, "lemma must be at least 2 characters in length"),
		"500": errorExample(http.StatusInternalServerError, "Internal Server Error", perr.ErrorCodePanic, "panic recovered"),
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			for statusCode, resp := range defaults {
				if _, exists := responses[statusCode]; !exists {
					responses[statusCode] = resp
				}
			}
		}
	}
}
