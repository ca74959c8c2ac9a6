// Package httputil provides the HTTP plumbing shared by the ordering
// service and its client.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [WriteJSON], [WriteError]: JSON responses with status codes derived
//     from error codes
//   - [DecodeJSON]: size-limited strict request decoding
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Transient(err)
//	    }
//	    defer resp.Body.Close()
//	    if httputil.TransientStatus(resp.StatusCode) {
//	        return httputil.Transient(httputil.ReadError(resp))
//	    }
//	    return nil
//	})
//
// Only errors wrapped by [Transient] trigger retries; an INVALID_SHAPE or
// ORDERING_FAILED answer fails immediately.
//
// # Errors
//
// [StatusCode] maps the codes of package errors onto HTTP statuses:
// malformed requests and unknown modes are 400, requests the engine cannot
// order are 422, missing resources 404 and everything else 500. Error
// bodies are always
//
//	{"error": {"code": "INVALID_SHAPE", "message": "..."}}
package httputil
