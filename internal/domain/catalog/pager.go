package catalog

import "context"

// DefaultMaxPages bounds a single catalog sync
const DefaultMaxPages = 100

// PagerOption configures a Pager
type PagerOption func(*Pager)

// WithMaxPages overrides the page cap. Values below 1 are ignored.
func WithMaxPages(n int) PagerOption {
	return func(p *Pager) {
		if n > 0 {
			p.maxPages = n
		}
	}
}

// Pager walks a cursor-paginated catalog one page at a time.
//
// It is lazy, finite and not restartable. Iteration stops when the page cap
// is reached, a page holds no products, a page carries no next cursor, or a
// fetch fails. After a failure Err returns the error and Next returns false.
//
//	p := catalog.NewPager(fetcher, req)
//	for p.Next(ctx) {
//		use(p.Page())
//	}
//	if err := p.Err(); err != nil { ... }
type Pager struct {
	fetcher  PageFetcher
	req      PageRequest
	maxPages int

	page    *Page
	pages   int
	err     error
	done    bool
	started bool
}

// NewPager creates a pager starting from req.Cursor
func NewPager(fetcher PageFetcher, req PageRequest, opts ...PagerOption) *Pager {
	p := &Pager{
		fetcher:  fetcher,
		req:      req,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.req.Limit <= 0 {
		p.req.Limit = DefaultPageLimit
	}
	return p
}

// Next fetches the following page. It returns false when iteration is over.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done {
		return false
	}
	if p.started && p.lastPageTerminal() {
		p.finish()
		return false
	}
	if p.pages >= p.maxPages {
		p.finish()
		return false
	}
	p.started = true

	page, err := p.fetcher.FetchPage(ctx, p.req)
	if err != nil {
		p.err = err
		p.finish()
		return false
	}
	if page == nil {
		page = &Page{}
	}
	p.pages++
	p.page = page
	p.req.Cursor = page.Next
	return true
}

// lastPageTerminal reports whether the page just returned ends iteration
func (p *Pager) lastPageTerminal() bool {
	return p.page == nil || len(p.page.Products) == 0 || p.page.Next == nil
}

func (p *Pager) finish() {
	p.done = true
	p.page = nil
}

// Page returns the page fetched by the last successful Next
func (p *Pager) Page() *Page {
	return p.page
}

// Err returns the fetch error that stopped iteration, if any
func (p *Pager) Err() error {
	return p.err
}

// Pages returns how many pages were fetched so far
func (p *Pager) Pages() int {
	return p.pages
}

// Collect drains the pager and returns every product in page order.
// Nothing is returned if any page fails.
func Collect(ctx context.Context, p *Pager) ([]Product, error) {
	var all []Product
	for p.Next(ctx) {
		all = append(all, p.Page().Products...)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return all, nil
}
