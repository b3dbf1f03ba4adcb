package listing

// DefaultLimit is the initial page size of paged lists.
const DefaultLimit = 10

// Pager is the page/limit state of a server-paged list.
type Pager struct {
	Search     string
	Page       int
	Limit      int
	TotalPages int
}

// NewPager starts on page 1.
func NewPager(limit int) *Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager{Page: 1, Limit: limit, TotalPages: 1}
}

// SetSearch changes the search term and returns to page 1.
func (p *Pager) SetSearch(s string) {
	if s == p.Search {
		return
	}
	p.Search = s
	p.Page = 1
}

// SetLimit changes the page size and returns to page 1.
func (p *Pager) SetLimit(limit int) {
	if limit <= 0 || limit == p.Limit {
		return
	}
	p.Limit = limit
	p.Page = 1
}

// SetTotalPages records the server's page count; a missing count means 1.
func (p *Pager) SetTotalPages(n int) {
	if n < 1 {
		n = 1
	}
	p.TotalPages = n
}

// CanNext reports whether a later page exists.
func (p *Pager) CanNext() bool { return p.Page < p.TotalPages }

// CanPrev reports whether an earlier page exists.
func (p *Pager) CanPrev() bool { return p.Page > 1 }

// Next advances one page, bounded by TotalPages.
func (p *Pager) Next() {
	if p.CanNext() {
		p.Page++
	}
}

// Prev goes back one page, bounded by 1.
func (p *Pager) Prev() {
	if p.CanPrev() {
		p.Page--
	}
}

// Goto jumps to page n, clamped to the known range.
func (p *Pager) Goto(n int) {
	switch {
	case n < 1:
		n = 1
	case n > p.TotalPages:
		n = p.TotalPages
	}
	p.Page = n
}
