package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings_Valid(t *testing.T) {
	s := DefaultAppSettings()

	assert.NoError(t, s.Validate())
	assert.Equal(t, time.Second, s.Search.Debounce())
	assert.Equal(t, 12, s.View.PageSize)
}

func TestAppSettings_Validate(t *testing.T) {
	s := DefaultAppSettings()
	s.View.Display = "grid"
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)

	s = DefaultAppSettings()
	s.Groupings = []ProgressFilter{ProgressPast}
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)

	s = DefaultAppSettings()
	s.Backend.Kind = "ftp"
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
}

func TestBackendSettings_IsConfigured(t *testing.T) {
	assert.True(t, BackendSettings{Kind: BackendSQLite}.IsConfigured())
	assert.False(t, BackendSettings{Kind: BackendWebService, URL: "https://lms"}.IsConfigured())
	assert.True(t, BackendSettings{Kind: BackendWebService, URL: "https://lms", Token: "t"}.IsConfigured())
}

func TestHiddenCoursePreference(t *testing.T) {
	key := HiddenCoursePreference(42)
	assert.Equal(t, "block_eledia_telc_coursesearch_hidden_course_42", key)

	id, ok := HiddenCourseID(key)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = HiddenCourseID(PrefPagingLimit)
	assert.False(t, ok)
}
