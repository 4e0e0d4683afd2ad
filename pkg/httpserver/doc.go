// Package httpserver runs an http.Handler with sane timeouts, stops it on
// context cancellation or SIGINT/SIGTERM and runs cleanup funcs once the
// listener is closed. HealthCheckHandler serves liveness and readiness probes.
package httpserver
