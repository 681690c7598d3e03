// Package api contains the HTTP handlers, request/response models, and
// error mapping for the review API. Handlers decode and validate input,
// delegate to the service and store layers, and translate internal errors
// into sanitized JSON responses.
package api
