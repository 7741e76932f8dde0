// Package npms provides a search client for the npms.io API.
//
// # Overview
//
// npms.io indexes the npm registry and serves ranked, prefix-matched package
// suggestions from /v2/search/suggestions. This package builds those URLs,
// defines the response schema and drives requests through a
// [fetch.Controller].
//
// # Usage
//
//	s := npms.NewSearcher(npms.WithDoer(integrations.NewHTTPClient(10*time.Second, "")))
//	if err := s.Search(ctx, "react"); err != nil {
//	    log.Fatal(err) // invalid query
//	}
//	s.Wait()
//
//	state := s.State()
//	for _, r := range state.Data {
//	    fmt.Println(r.Package.Name, r.Package.Version)
//	}
//
// # PackageResult
//
// Each suggestion is a [PackageResult]:
//
//   - Package: name, scope, version, description, keywords, links
//   - Score: npms final score with quality/popularity/maintenance detail
//   - Highlight: the name with matched parts wrapped in <em>
//
// Results are never cached; every Search performs one request.
//
// [fetch.Controller]: github.com/matzehuels/gremlin/pkg/fetch.Controller
package npms
