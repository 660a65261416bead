package shared

import "net/http"

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset. A missing or non-positive limit
// falls back to defaultLimit and anything above maxLimit is capped.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := QueryInt(r, "limit", defaultLimit)
	if limit == 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: QueryInt(r, "offset", 0)}
}
