// Package requestid tags every HTTP request with an X-Request-ID, stores it in
// the request context and exposes a logger extractor so log records written
// during the request carry a request_id attribute.
package requestid
