// Package api хранит OpenAPI описание HTTP API сервиса поиска.
package api

import (
	_ "embed"
)

//go:embed openapi.json
var spec []byte

// Spec возвращает OpenAPI документ
func Spec() []byte {
	return spec
}
