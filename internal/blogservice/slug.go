package blogservice

import "github.com/gosimple/slug"

// slugify turns a human readable title or name into a URL-safe identifier.
func slugify(s string) string {
	return slug.Make(s)
}
