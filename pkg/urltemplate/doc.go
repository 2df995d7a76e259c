// Package urltemplate parses `:name` style path templates and resolves them
// against a bag of bound values.
//
// Placeholders at the end of a path may be left unbound and are trimmed from
// the result, so "entities/:id/:action/:param" resolves to "entities/5/wip"
// when only id and action are known. A gap in the middle of the path is a
// configuration error reported as ErrMalformedTemplate.
package urltemplate
