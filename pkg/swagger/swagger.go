// Package swagger отдаёт OpenAPI документ и Swagger UI для HTTP API.
package swagger

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"gridbench/pkg/logger"
)

// Config описывает, где смонтирован UI и как он открывается.
type Config struct {
	Title        string
	BasePath     string // например /swagger
	SpecPath     string // относительно BasePath
	DeepLinking  bool
	DocExpansion string // list, full, none
}

func DefaultConfig() *Config {
	return &Config{
		Title:        "gridbench search API",
		BasePath:     "/swagger",
		SpecPath:     "/openapi.json",
		DeepLinking:  true,
		DocExpansion: "list",
	}
}

var uiTemplate = template.Must(template.New("swagger-ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({
  url: "{{.SpecURL}}",
  dom_id: "#swagger-ui",
  deepLinking: {{.DeepLinking}},
  docExpansion: "{{.DocExpansion}}",
  tryItOutEnabled: true,
  validatorUrl: null
});
</script>
</body>
</html>
`))

// Handler отдаёт UI и документ. Оба ответа собираются один раз в NewHandler.
type Handler struct {
	base     string
	specName string
	page     []byte
	spec     []byte
	specETag string
	loadedAt time.Time
}

// NewHandler готовит страницу UI и ETag документа (sha256 содержимого).
// nil cfg означает DefaultConfig.
func NewHandler(cfg *Config, spec []byte) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var page bytes.Buffer
	err := uiTemplate.Execute(&page, map[string]any{
		"Title":        cfg.Title,
		"SpecURL":      cfg.BasePath + cfg.SpecPath,
		"DeepLinking":  cfg.DeepLinking,
		"DocExpansion": cfg.DocExpansion,
	})
	if err != nil {
		logger.Log.Error("Swagger UI page render failed", "error", err)
	}

	return &Handler{
		base:     cfg.BasePath,
		specName: strings.TrimPrefix(cfg.SpecPath, "/"),
		page:     page.Bytes(),
		spec:     spec,
		specETag: fmt.Sprintf(`"%x"`, sha256.Sum256(spec)),
		loadedAt: time.Now(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, h.base), "/")

	switch name {
	case "", "index.html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(h.page)
	case h.specName, "openapi.json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("ETag", h.specETag)
		// ServeContent отвечает 304 на совпавший If-None-Match
		http.ServeContent(w, r, "openapi.json", h.loadedAt, bytes.NewReader(h.spec))
	default:
		http.NotFound(w, r)
	}
}

// RegisterRoutes монтирует Handler на "GET base/" и редиректит "GET base" туда же.
func RegisterRoutes(mux *http.ServeMux, cfg *Config, spec []byte) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	mux.Handle("GET "+cfg.BasePath+"/", NewHandler(cfg, spec))
	mux.Handle("GET "+cfg.BasePath, http.RedirectHandler(cfg.BasePath+"/", http.StatusMovedPermanently))
}
