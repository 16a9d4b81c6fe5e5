package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func TestSearchCmd_Metadata(t *testing.T) {
	assert.Equal(t, "search [term]", searchCmd.Use)
	assert.Equal(t, "Search courses", searchCmd.Short)
	assert.Contains(t, searchCmd.Long, "facet filters")

	flag := searchCmd.Flags().Lookup("size")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "-1", flag.DefValue)

	flag = searchCmd.Flags().Lookup("page")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
}

func TestSearchCmd_TooManyArgs(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "search", "one", "two")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg(s)")
}

func TestSearchCmd_BrowsesWithoutTerm(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "search")

	require.NoError(t, err)
	for _, name := range []string{"Deutsch B1", "Deutsch C1", "English A2", "Mathematics"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Page 1 of 1")
}

func TestSearchCmd_Term(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "search", "deutsch")

	require.NoError(t, err)
	assert.Contains(t, out, "Deutsch B1")
	assert.Contains(t, out, "Deutsch C1")
	assert.NotContains(t, out, "Mathematics")
}

func TestSearchCmd_NoMatches(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "search", "astronomy")

	require.NoError(t, err)
	assert.Contains(t, out, "No courses")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "search", "--json", "deutsch")

	require.NoError(t, err)
	var result searchJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 12, result.PageSize)
	require.Len(t, result.Courses, 2)
	assert.Equal(t, "Deutsch B1", result.Courses[0].FullName)
	require.NotNil(t, result.Courses[0].Progress)
	assert.Equal(t, 40, *result.Courses[0].Progress)
	assert.Nil(t, result.Courses[1].Progress)
	require.NotNil(t, result.LastPage)
	assert.Equal(t, 1, *result.LastPage)
}

func TestSearchCmd_FacetFlags(t *testing.T) {
	setupTestServices(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "category", args: []string{"--category", "science"}, want: []string{"Mathematics"}},
		{name: "tag", args: []string{"--tag", "exam"}, want: []string{"Deutsch B1"}},
		{name: "field", args: []string{"--field", "level=C1"}, want: []string{"Deutsch C1"}},
		{
			name: "combined",
			args: []string{"-c", "Languages", "-f", "level=b1"},
			want: []string{"Deutsch B1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"search", "--json"}, tt.args...)...)

			require.NoError(t, err)
			var result searchJSONOutput
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			names := make([]string, len(result.Courses))
			for i, c := range result.Courses {
				names[i] = c.FullName
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearchCmd_InvalidFieldFilter(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "search", "--field", "level")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want shortname=value")

	_, _, err = run(t, "search", "--field", "colour=red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown custom field "colour"`)
}

func TestSearchCmd_UnknownCategory(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "search", "--category", "History")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchCmd_PageAndSize(t *testing.T) {
	ts := setupTestServices(t)

	out, _, err := run(t, "search", "--json", "--size", "3", "--page", "2")

	require.NoError(t, err)
	var result searchJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.PageSize)
	require.Len(t, result.Courses, 1)
	assert.Equal(t, "Mathematics", result.Courses[0].FullName)

	stored, ok, err := ts.prefs.Preference(context.Background(), domain.PrefPagingLimit)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", stored)
}

func TestSearchCmd_InvalidPage(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "search", "--page", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page 0")
}

func TestSearchCmd_InvalidProgress(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "search", "--progress", "someday")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchCmd_HiddenGrouping(t *testing.T) {
	ts := setupTestServices(t)
	hidden := "1"
	require.NoError(t, ts.prefs.SetPreference(context.Background(), domain.HiddenCoursePreference(4), &hidden))

	out, _, err := run(t, "search", "--progress", "hidden", "--display", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Mathematics")
	assert.NotContains(t, out, "Deutsch B1")
}

func TestSearchCmd_ShowsFacets(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "search", "--facets", "--category", "Science")

	require.NoError(t, err)
	assert.Contains(t, out, "Categories")
	assert.Contains(t, out, "[x] Science")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	clearServices(t)

	_, _, err := run(t, "search", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
