package handler

import (
	_ "embed"
	"net/http"

	"github.com/go-openapi/runtime/middleware"
)

//go:embed openapi.yaml
var openapiSpec []byte

// OpenAPISpecPath はOpenAPI定義を配信するパス。
const OpenAPISpecPath = "/api/openapi.yaml"

// ServeOpenAPISpec は埋め込まれたOpenAPI定義を返す。
func ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}

// NewDocsHandler は/api/docsでRedocを配信するハンドラーを返す。
func NewDocsHandler() http.Handler {
	return middleware.Redoc(middleware.RedocOpts{
		SpecURL: OpenAPISpecPath,
		Path:    "api/docs",
		Title:   "Snapgo Site API",
	}, http.NotFoundHandler())
}
