// Package webservice talks to a remote LMS through its REST web service.
//
// Every call is a form POST to /webservice/rest/server.php carrying the
// wstoken, wsfunction and moodlewsrestformat=json query parameters.
// Search criteria are encoded as indexed form fields, e.g.
// criteria[0][key]=name&criteria[0][value]=german.
//
// Adapters:
//   - CourseService: driven.CourseSearchService over the course block functions
//   - PreferenceStore: driven.PreferenceStore over the user preference functions
package webservice
