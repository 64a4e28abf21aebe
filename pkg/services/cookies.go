package services

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidCookies indicates the submitted credential payload could not be
// used: not a key/value sequence, or missing the required "sb" entry.
var ErrInvalidCookies = errors.New("invalid credential payload")

// CookiePair is one element of the serialized credential sequence.
type CookiePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CredentialFromCookies rebuilds the credential string forwarded to the
// external lookups. The payload must contain an "sb" entry, which leads the
// reconstructed string; the remaining pairs follow in submission order. No
// validation beyond the presence check happens here.
func CredentialFromCookies(raw string) (string, error) {
	var pairs []CookiePair
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return "", ErrInvalidCookies
	}

	sb := ""
	for _, pair := range pairs {
		if pair.Key == "sb" {
			sb = pair.Value
			break
		}
	}
	if sb == "" {
		return "", ErrInvalidCookies
	}

	parts := []string{"sb=" + sb}
	for _, pair := range pairs {
		if pair.Key == "sb" || pair.Key == "" {
			continue
		}
		parts = append(parts, pair.Key+"="+pair.Value)
	}
	return strings.Join(parts, "; "), nil
}
