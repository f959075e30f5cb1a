package problem

// HeaderRequestID is the canonical header for request correlation. Must stay
// consistent between the logging middleware and every problem response.
const HeaderRequestID = "X-Request-ID"

// JSONKeyRequestID is the canonical JSON field name for request correlation.
const JSONKeyRequestID = "requestId"
