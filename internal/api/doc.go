// Package api handles incoming HTTP requests: routing targets, request
// validation, and response formatting. It translates HTTP concerns into
// calls on the application services and maps their errors back to status
// codes and the uniform response envelope.
package api
