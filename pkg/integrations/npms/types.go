package npms

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/gremlin/pkg/integrations"
)

// PackageResult is one entry of a suggestions response.
type PackageResult struct {
	Package     Package `json:"package"`
	Highlight   string  `json:"highlight,omitempty"` // name with <em> around matched parts
	Score       Score   `json:"score"`
	SearchScore float64 `json:"searchScore"`
}

// Package describes the matched npm package at its latest version.
type Package struct {
	Name        string     `json:"name"`
	Scope       string     `json:"scope"` // "unscoped" for packages without @scope/
	Version     string     `json:"version"`
	Description string     `json:"description,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Date        time.Time  `json:"date"`
	Links       Links      `json:"links"`
	Publisher   *Publisher `json:"publisher,omitempty"`
}

// Links holds the URLs npms knows for a package.
// Repository is normalized to canonical HTTPS form when decoded.
type Links struct {
	Npm        string `json:"npm"`
	Homepage   string `json:"homepage,omitempty"`
	Repository string `json:"repository,omitempty"`
	Bugs       string `json:"bugs,omitempty"`
}

// UnmarshalJSON decodes links and normalizes the repository URL.
func (l *Links) UnmarshalJSON(data []byte) error {
	type plain Links
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Links(p)
	l.Repository = integrations.NormalizeRepoURL(l.Repository)
	return nil
}

// Publisher is the npm user who published the latest version.
type Publisher struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Score is the npms ranking of a package, each component in [0, 1].
type Score struct {
	Final  float64     `json:"final"`
	Detail ScoreDetail `json:"detail"`
}

// ScoreDetail breaks [Score.Final] down by aspect.
type ScoreDetail struct {
	Quality     float64 `json:"quality"`
	Popularity  float64 `json:"popularity"`
	Maintenance float64 `json:"maintenance"`
}
