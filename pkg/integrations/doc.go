// Package integrations provides shared HTTP plumbing for package registry APIs.
//
// # Overview
//
// Registry-specific clients live in subpackages:
//
//   - [npms]: npms.io search suggestions for the npm registry
//
// # Shared Infrastructure
//
// [NewHTTPClient] builds the *http.Client every registry request goes
// through. It sets a User-Agent, applies a per-request timeout and reports
// each round trip to the hooks registered in [observability]. It does not
// cache or retry: a failed request surfaces to the caller as-is.
//
// [NormalizeRepoURL] canonicalizes repository links reported by registries.
//
// # Adding a New Registry
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Build request URLs for the endpoints you need
//  4. Drive requests through a [fetch.Controller] with [NewHTTPClient] as its Doer
//
// [npms]: github.com/matzehuels/gremlin/pkg/integrations/npms
// [observability]: github.com/matzehuels/gremlin/pkg/observability
// [fetch.Controller]: github.com/matzehuels/gremlin/pkg/fetch.Controller
package integrations
