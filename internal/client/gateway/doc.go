// Package gateway is the single outbound HTTP pipeline of the client.
//
// Every request passes through two ordered hooks installed as an
// http.RoundTripper:
//
//   - outbound: read the bearer token from durable storage and attach it as
//     the Authorization header (no token, no header), stamp X-Request-ID;
//   - inbound: on 401, clear the durable credentials and fire every
//     registered UnauthorizedHandler, unless the stored token is no longer
//     the one the request carried. The response still reaches the caller
//     as a *ResponseError, so callers must not assume the session survived.
//
// Gateway.Do adds JSON encoding and classifies failures:
//
//   - *ResponseError:  the server answered with a non-2xx status;
//   - *TransportError: the request left but no response came back;
//   - any other error: the call could not be built or the body not decoded.
//
// ctx cancellation is returned as ctx.Err() unchanged.
package gateway
