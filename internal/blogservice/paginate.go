package blogservice

import (
	"context"
	"strconv"
	"strings"
)

// numPages returns the number of pages needed for count items. An empty collection still has one page.
func numPages(count, size int) int {
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// pageNumber resolves the raw page parameter. Anything that is not an integer
// falls back to the first page; integers outside 1..pages fall back to the last page.
func pageNumber(raw string, pages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}

	if n < 1 || n > pages {
		return pages
	}

	return n
}

func (s *BlogService) paginate(ctx context.Context, f PostFilter, raw string) (*Page, error) {
	count, err := s.store.CountPublished(ctx, f)
	if err != nil {
		return nil, err
	}

	pages := numPages(count, PageSize)
	number := pageNumber(raw, pages)

	posts, err := s.store.ListPublished(ctx, f, PageSize, (number-1)*PageSize)
	if err != nil {
		return nil, err
	}

	return &Page{
		Number:      number,
		NumPages:    pages,
		Count:       count,
		HasNext:     number < pages,
		HasPrevious: number > 1,
		Posts:       posts,
	}, nil
}
