package npmstest

import (
	"time"

	"github.com/matzehuels/gremlin/pkg/integrations/npms"
)

// Packages returns the default fixture set served by [NewServer].
func Packages() []npms.PackageResult {
	return []npms.PackageResult{
		fixture("react", "18.2.0", "React is a JavaScript library for building user interfaces.",
			"https://github.com/facebook/react", 0.93, "2022-06-14T19:46:38Z"),
		fixture("react-dom", "18.2.0", "React package for working with the DOM.",
			"https://github.com/facebook/react", 0.91, "2022-06-14T19:46:59Z"),
		fixture("react-router", "6.22.3", "Declarative routing for React",
			"https://github.com/remix-run/react-router", 0.88, "2024-03-07T14:33:10Z"),
		fixture("redux", "5.0.1", "Predictable state container for JavaScript apps",
			"https://github.com/reduxjs/redux", 0.89, "2023-12-23T19:51:49Z"),
		fixture("express", "4.19.2", "Fast, unopinionated, minimalist web framework",
			"https://github.com/expressjs/express", 0.90, "2024-03-25T15:04:51Z"),
		fixture("lodash", "4.17.21", "Lodash modular utilities.",
			"https://github.com/lodash/lodash", 0.87, "2021-02-20T15:42:16Z"),
		fixture("preact", "10.20.1", "Fast 3kb React-compatible Virtual DOM library.",
			"https://github.com/preactjs/preact", 0.84, "2024-03-22T10:12:44Z"),
	}
}

func fixture(name, version, desc, repo string, score float64, date string) npms.PackageResult {
	d, _ := time.Parse(time.RFC3339, date)
	return npms.PackageResult{
		Package: npms.Package{
			Name:        name,
			Scope:       "unscoped",
			Version:     version,
			Description: desc,
			Date:        d,
			Links: npms.Links{
				Npm:        "https://www.npmjs.com/package/" + name,
				Repository: repo,
				Bugs:       repo + "/issues",
			},
			Publisher: &npms.Publisher{Username: "npm-" + name},
		},
		Score: npms.Score{
			Final:  score,
			Detail: npms.ScoreDetail{Quality: score, Popularity: score, Maintenance: score},
		},
		SearchScore: score * 100000,
	}
}
