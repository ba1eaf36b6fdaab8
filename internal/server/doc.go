// Package server provides HTTP routing, middleware, and the JSON handlers of the sequence service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps the whole mux, first added outermost. [NewRouter] installs
// [Recover], [Logging] and [RateLimit] in that order.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Sequence Endpoints
//
// [SequenceHandler] serves three POST routes:
//
//	POST /sequence          → register an element, 200 with the element
//	POST /sequence/reorder  → move elements, 200 with an empty body
//	POST /sequence/version  → bump a version, 200 with the element or 404
//
// Bodies are decoded into pointer-field structs so absent keys can be told apart from
// zero values. Missing fields are 400. Errors are written as {"error": true, "reason": "..."};
// storage failures are logged and reported as a bare 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
