// Package api serves nested dissection orderings over HTTP.
//
// # Endpoints
//
//	GET  /healthz       liveness probe
//	GET  /version       build information
//	POST /v1/order      order a sparse pattern
//	POST /v1/analyze    fill statistics of a given permutation
//	POST /v1/tree       separator tree as DOT or SVG (?format=svg)
//
// Requests carry the pattern as 0-based [row, col] pairs:
//
//	{"nrow": 3, "ncol": 3, "entries": [[1,0],[2,1]], "mode": "sym"}
//
// Ordering parameters may be given by name (small_threshold,
// split_components, separator_quality, leaf_ordering) or as a positional
// "opts" vector [small, split, quality, leaf]. Responses use the ordering
// document of package io. Errors use the body described in package
// httputil, with 400 for invalid input, 422 when no ordering could be
// produced and 500 otherwise.
//
// [Client] is the matching Go client.
package api
