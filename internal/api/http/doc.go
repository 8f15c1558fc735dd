// Package http exposes the share over a JSON API built on gin.
//
// Errors are rendered as {"error": message, "kind": kind} with a status derived
// from the share error kind. File content is served raw with a sniffed content type.
package http
