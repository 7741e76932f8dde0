package npms

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/gremlin/pkg/errors"
)

func TestSuggestionsURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		q    SuggestionsQuery
		want string
	}{
		{"default", DefaultBaseURL, SuggestionsQuery{Q: "react", Size: 25},
			"https://api.npms.io/v2/search/suggestions?q=react&size=25"},
		{"no size", DefaultBaseURL, SuggestionsQuery{Q: "react"},
			"https://api.npms.io/v2/search/suggestions?q=react"},
		{"escaped", DefaultBaseURL, SuggestionsQuery{Q: "@types/node x", Size: 5},
			"https://api.npms.io/v2/search/suggestions?q=%40types%2Fnode+x&size=5"},
		{"trailing slash", "http://127.0.0.1:8080/", SuggestionsQuery{Q: "a", Size: 1},
			"http://127.0.0.1:8080/v2/search/suggestions?q=a&size=1"},
		{"base path", "https://proxy.example.com/npms", SuggestionsQuery{Q: "a"},
			"https://proxy.example.com/npms/v2/search/suggestions?q=a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SuggestionsURL(tt.base, tt.q)
			if err != nil {
				t.Fatalf("SuggestionsURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SuggestionsURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuggestionsURLInvalidBase(t *testing.T) {
	for _, base := range []string{"", "ftp://example.com", "not a url", "https://"} {
		_, err := SuggestionsURL(base, SuggestionsQuery{Q: "x"})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("SuggestionsURL(%q) error = %v, want %s", base, err, errors.ErrCodeInvalidInput)
		}
	}
}

func TestLinksNormalizeRepository(t *testing.T) {
	raw := `{"npm":"https://www.npmjs.com/package/react","repository":"git+https://github.com/facebook/react.git"}`
	var l Links
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.Repository != "https://github.com/facebook/react" {
		t.Errorf("Repository = %q", l.Repository)
	}
	if l.Npm != "https://www.npmjs.com/package/react" {
		t.Errorf("Npm = %q", l.Npm)
	}
}

func TestDecodeSuggestions(t *testing.T) {
	raw := `[{
		"package": {
			"name": "react",
			"scope": "unscoped",
			"version": "18.2.0",
			"description": "React is a JavaScript library for building user interfaces.",
			"keywords": ["react"],
			"date": "2022-06-14T19:46:38.369Z",
			"links": {"npm": "https://www.npmjs.com/package/react", "homepage": "https://reactjs.org/"},
			"publisher": {"username": "gnoff", "email": "jcsavona@gmail.com"}
		},
		"score": {"final": 0.93, "detail": {"quality": 0.87, "popularity": 0.96, "maintenance": 0.99}},
		"searchScore": 100000.43,
		"highlight": "<em>react</em>"
	}]`

	var got Suggestions
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results", len(got))
	}
	p := got[0]
	if p.Package.Name != "react" || p.Package.Version != "18.2.0" {
		t.Errorf("package = %+v", p.Package)
	}
	if p.Package.Publisher == nil || p.Package.Publisher.Username != "gnoff" {
		t.Errorf("publisher = %+v", p.Package.Publisher)
	}
	if p.Score.Detail.Popularity != 0.96 {
		t.Errorf("popularity = %v", p.Score.Detail.Popularity)
	}
	if p.Package.Date.Year() != 2022 {
		t.Errorf("date = %v", p.Package.Date)
	}
}
