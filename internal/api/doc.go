// Package api contains the HTTP handlers for the study service: user
// authentication, deck tree and card management, and quiz sessions. Handlers
// decode and validate requests, delegate to the service layer, and translate
// service errors into sanitized JSON responses.
package api
