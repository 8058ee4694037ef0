// Package routes declares HTTP endpoints as data so modules can compose
// route trees before anything touches a mux.
package routes

import "net/http"

// Route pairs a method and ServeMux pattern with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
