package domain

// Template names understood by a Renderer.
const (
	TemplateCards     = "view-cards"
	TemplateList      = "view-list"
	TemplateSummary   = "view-summary"
	TemplateNoCourses = "no-courses"
	TemplatePaging    = "paging-bar"

	TemplateCategoryDropdown    = "nav-category-dropdown"
	TemplateTagsDropdown        = "nav-tags-dropdown"
	TemplateCustomFieldDropdown = "nav-customfield-dropdown"
)

// Container names a region a Renderer can replace.
const (
	ContainerCourses = "courses"
	ContainerPaging  = "paging"
)

// DropdownContainer returns the container name of the dropdown for key.
func DropdownContainer(key FacetKey) string {
	return "dropdown:" + key.String()
}

// DropdownTemplate returns the template that renders the dropdown for key.
func DropdownTemplate(key FacetKey) string {
	switch key.Kind {
	case FacetCategory:
		return TemplateCategoryDropdown
	case FacetTags:
		return TemplateTagsDropdown
	default:
		return TemplateCustomFieldDropdown
	}
}

// Rendered is opaque markup produced by a Renderer.
type Rendered struct {
	Template string
	Body     string
}

// CoursesView is the data passed to the course list templates.
type CoursesView struct {
	Page           int
	Courses        []Course
	ShowCategories bool
	Display        DisplayMode
}

// PagingView is the data passed to the paging bar template.
type PagingView struct {
	// Page is the 0-based current page.
	Page int

	// LastPage is the 0-based final page, or -1 while unknown.
	LastPage int

	PageSize int
	Sizes    []int
}

// DropdownView is the data passed to the dropdown templates.
type DropdownView struct {
	Facet    FacetSnapshot
	Title    string
	Expanded bool
}

// NotificationLevel is the severity of a Notification.
type NotificationLevel string

// Available notification levels.
const (
	NotifyInfo  NotificationLevel = "info"
	NotifyError NotificationLevel = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
}
