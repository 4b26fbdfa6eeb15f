// Package github implements a layer source backed by a GitHub repository.
//
// The repository keeps one file per layer, <path>/<id>.tl, on a branch
// (vrumger/tl, schemes/, master by default). Each ingestion run:
//
//  1. Resolves the branch head with the commits API
//  2. Walks the tree API from the head's root tree down to <path>
//  3. Offers every blob named <id>.tl; names containing "unknown" and
//     non-numeric stems are ignored
//  4. For each new layer, dates it by the newest commit touching the file
//     (release year and month) and reads its contents at the pinned head
//
// # Authentication
//
// A personal access token is optional. Anonymous requests are limited by
// GitHub to 60 per hour, which is enough for a periodic poll but not for
// an initial import of several hundred layers.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to roughly
//     1.2 requests per second.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset
//     headers are tracked. When the remaining quota drops below a buffer,
//     requests wait until the reset time.
//
// # Error Handling
//
// go-github failures are mapped to [*APIError] and [*RateLimitError]. Use
// [IsNotFound], [IsRateLimited], [IsUnauthorized] and [IsForbidden] to
// classify them.
package github
