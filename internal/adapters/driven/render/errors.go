package render

import "errors"

// ErrUnknownTemplate is returned when Render is asked for a template it does not know.
var ErrUnknownTemplate = errors.New("render: unknown template")

// ErrTemplateData is returned when a template receives data of the wrong type.
var ErrTemplateData = errors.New("render: unexpected template data")
