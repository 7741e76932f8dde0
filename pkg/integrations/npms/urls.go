package npms

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/gremlin/pkg/errors"
)

// DefaultBaseURL is the public npms.io API.
const DefaultBaseURL = "https://api.npms.io"

// DefaultPageSize is the number of suggestions requested per search.
const DefaultPageSize = 25

// MaxPageSize is the largest size the suggestions endpoint accepts.
const MaxPageSize = 100

// SuggestionsQuery holds the parameters of a suggestions request.
type SuggestionsQuery struct {
	Q    string // search text
	Size int    // result count; <= 0 leaves it to the server
}

// SuggestionsURL builds the suggestions endpoint URL for base.
// Query keys are emitted in sorted order: q, then size.
func SuggestionsURL(base string, q SuggestionsQuery) (string, error) {
	if err := errors.ValidateURL(base); err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL %q", base)
	}
	u = u.JoinPath("v2", "search", "suggestions")

	v := url.Values{}
	v.Set("q", q.Q)
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}
