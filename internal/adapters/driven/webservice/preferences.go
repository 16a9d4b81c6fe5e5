package webservice

import (
	"context"
	"net/url"

	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

const (
	fnUpdatePreferences = "core_user_update_user_preferences"
	fnGetPreferences    = "core_user_get_user_preferences"
)

// Ensure PreferenceStore implements the interface.
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore keeps user preferences on the LMS.
type PreferenceStore struct {
	client *Client
}

// NewPreferenceStore creates a preference store using client.
func NewPreferenceStore(client *Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

// SetPreference stores value under key. A nil value deletes the key.
func (s *PreferenceStore) SetPreference(ctx context.Context, key string, value *string) error {
	params := url.Values{"preferences[0][type]": {key}}
	if value != nil {
		params.Set("preferences[0][value]", *value)
	}
	return s.client.Call(ctx, fnUpdatePreferences, params, nil)
}

// Preference returns the value stored under key.
func (s *PreferenceStore) Preference(ctx context.Context, key string) (string, bool, error) {
	var resp struct {
		Preferences []struct {
			Name  string  `json:"name"`
			Value *string `json:"value"`
		} `json:"preferences"`
	}
	if err := s.client.Call(ctx, fnGetPreferences, url.Values{"name": {key}}, &resp); err != nil {
		return "", false, err
	}
	for _, p := range resp.Preferences {
		if p.Name == key && p.Value != nil {
			return *p.Value, true, nil
		}
	}
	return "", false, nil
}
