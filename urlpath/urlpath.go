package urlpath

import (
	"net/http"

	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/textutil"
)

// NamePathValue extracts the "name" path variable from the request and
// checks that it could be a tournament name.
//
// On error, an error is reported to the client and ok is false.
func NamePathValue(w http.ResponseWriter, r *http.Request) (name string, ok bool) {
	name, err := namePathValueFromRequest(r)
	if err != nil {
		he.SendErrorToHTTPClient(w, "parsing URL", err)
		return "", false
	}
	return name, true
}

func namePathValueFromRequest(r *http.Request) (string, error) {
	name := r.PathValue("name")
	if name == "" || !textutil.ValidTournamentName(name) {
		return "", he.HTTPCodedErrorf(400, "bad tournament name in url path: %q", name)
	}
	return name, nil
}
