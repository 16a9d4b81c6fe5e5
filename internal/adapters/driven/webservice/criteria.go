package webservice

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// Criterion keys that only exist on the wire.
const (
	keyLimit              = "limit"
	keyOffset             = "offset"
	keyCategoryName       = "categoryName"
	keyTagsName           = "tagsName"
	keyCurrentCustomField = "currentCustomField"
)

// extraCriterion is a plain key/value criterion appended after the request's own.
type extraCriterion struct {
	key   string
	value string
}

// encodeCriteria renders the criteria of req followed by extras as indexed form fields.
func encodeCriteria(req domain.SearchRequest, extras ...extraCriterion) url.Values {
	values := url.Values{}
	i := 0
	next := func(key string) string {
		prefix := fmt.Sprintf("criteria[%d]", i)
		i++
		values.Set(prefix+"[key]", key)
		return prefix
	}

	for _, c := range req.Criteria() {
		prefix := next(c.Key())
		switch c := c.(type) {
		case domain.NameCriterion:
			values.Set(prefix+"[value]", c.Term)
		case domain.CategoriesCriterion:
			for j, id := range c.IDs {
				values.Set(fmt.Sprintf("%s[categories][%d][id]", prefix, j), strconv.FormatInt(id, 10))
			}
		case domain.TagsCriterion:
			for j, id := range c.IDs {
				values.Set(fmt.Sprintf("%s[tags][%d][id]", prefix, j), strconv.FormatInt(id, 10))
				values.Set(fmt.Sprintf("%s[tags][%d][name]", prefix, j), "")
			}
		case domain.CustomFieldsCriterion:
			for j, sel := range c.Fields {
				field := fmt.Sprintf("%s[customfields][%d]", prefix, j)
				values.Set(field+"[fieldid]", strconv.Itoa(sel.FieldID))
				for k, v := range sel.Values {
					values.Set(fmt.Sprintf("%s[fieldvalues][%d]", field, k), v)
				}
			}
		case domain.ProgressCriterion:
			values.Set(prefix+"[value]", c.Filter.String())
		}
	}

	for _, e := range extras {
		prefix := next(e.key)
		values.Set(prefix+"[value]", e.value)
	}
	return values
}

// pageCriteria returns the limit and offset criteria of req.
func pageCriteria(req domain.SearchRequest) []extraCriterion {
	return []extraCriterion{
		{key: keyLimit, value: strconv.Itoa(req.Limit)},
		{key: keyOffset, value: strconv.Itoa(req.Offset)},
	}
}
