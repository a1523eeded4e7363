// Package twitter resolves a single Twitter/X post's public metadata by its
// numeric identifier, speaking the platform's private GraphQL API.
//
// A lookup is a strictly sequential pipeline: guest token activation, the
// primary lookup request, and, when the post is gated as sensitive, a
// multi-step login flow that trades caller credentials for a session cookie
// before one retry of the lookup. The raw nested API document is normalized
// into the flat domain model in pkg/models. No state survives an invocation;
// concurrent lookups need no coordination.
package twitter
