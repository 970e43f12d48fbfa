// Package api provides the HTTP client for the remote catalog and the
// normalization step that turns its denormalized payloads into flat entity
// lists.
//
// # Endpoints
//
//   - GET    /products                      list with embedded category and reviews
//   - GET    /products/{id}                 one product, same shape
//   - POST   /products                      create, returns the created record
//   - PATCH  /products/{id}                 partial update, returns the record
//   - DELETE /products/{id}                 no content
//   - GET    /categories                    categories; ids may be strings
//   - POST   /products/{id}/reviews         returns {"review": ...}
//   - GET    /categories/{id}/products      product list shape
//   - GET    /products/search?q=            product list shape
//
// # Requests
//
// All requests carry Accept: application/json, a storefront User-Agent and a
// fresh X-Request-ID. Bodies are JSON. The client timeout defaults to five
// seconds.
//
// # Errors
//
// Failures are returned as *Error. Status is the HTTP status, or zero when
// the request never got a response (Err then holds the cause). When the
// server sends its {"error","message","statusCode"} envelope, Message holds
// the text. Malformed success bodies return a wrapped "decode response"
// error.
//
// # Normalization
//
// NormalizeProducts walks each product: its embedded category is filed by
// ID, each embedded review's author is filed as a user, the review becomes
// a flat record pointing at its author and product, and the product keeps
// the review IDs in response order. Repeated IDs keep their first-seen
// position and take the last value. Denormalize is the inverse, so
// normalizing a denormalized result gives the same lists back.
package api
