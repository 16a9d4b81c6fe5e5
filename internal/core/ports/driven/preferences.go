package driven

import "context"

// PreferenceStore persists per-user preferences such as hidden courses.
type PreferenceStore interface {
	// SetPreference stores value under key. A nil value deletes the preference.
	SetPreference(ctx context.Context, key string, value *string) error

	// Preference returns the value of key and whether it is set.
	Preference(ctx context.Context, key string) (string, bool, error)
}
