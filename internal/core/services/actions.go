package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// coursePath is the LMS page of a course, relative to the site root.
const coursePath = "/course/view.php"

// ErrNoCourseLink is returned for a course without a resolvable page link.
var ErrNoCourseLink = errors.New("course has no link")

// Ensure CourseActionService implements the interface.
var _ driving.CourseActions = (*CourseActionService)(nil)

// CourseActionService opens and copies course links.
type CourseActionService struct {
	// siteURL resolves links for courses without a ViewURL. Optional.
	siteURL string

	openLink func(link string) error
	copyText func(text string) error
}

// NewCourseActionService creates a course action service. siteURL is the
// LMS root used when a course carries no ViewURL; it may be empty.
func NewCourseActionService(siteURL string) *CourseActionService {
	return &CourseActionService{
		siteURL:  strings.TrimRight(siteURL, "/"),
		openLink: openURL,
		copyText: clipboard.WriteAll,
	}
}

// OpenCourse opens the course page in the default browser.
func (s *CourseActionService) OpenCourse(_ context.Context, course *domain.Course) error {
	link, err := s.CourseLink(course)
	if err != nil {
		return err
	}
	if err := s.openLink(link); err != nil {
		return fmt.Errorf("opening %s: %w", link, err)
	}
	return nil
}

// CopyLink copies the course page link to the system clipboard.
func (s *CourseActionService) CopyLink(_ context.Context, course *domain.Course) error {
	link, err := s.CourseLink(course)
	if err != nil {
		return err
	}
	if err := s.copyText(link); err != nil {
		return fmt.Errorf("copying link: %w", err)
	}
	return nil
}

// CourseLink returns the page link of course: its ViewURL, or the course
// page below the site URL.
func (s *CourseActionService) CourseLink(course *domain.Course) (string, error) {
	if course == nil {
		return "", fmt.Errorf("%w: course is nil", domain.ErrInvalidInput)
	}
	if course.ViewURL != "" {
		return course.ViewURL, nil
	}
	if s.siteURL == "" {
		return "", fmt.Errorf("%w: %d", ErrNoCourseLink, course.ID)
	}
	return s.siteURL + coursePath + "?" + url.Values{"id": {strconv.FormatInt(course.ID, 10)}}.Encode(), nil
}

// openURL opens a URL using the system default handler.
func openURL(link string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", link)
	case osLinux:
		cmd = exec.Command("xdg-open", link)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
