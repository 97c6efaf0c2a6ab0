package olx

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

const (
	variantA = "sc-1fcmfeb-2 ggOGTJ"
	variantB = "sc-1fcmfeb-2 hFOgZc"
)

type cardFixture struct {
	variant  string
	id       string
	name     string // empty omits the name element
	price    string
	date     string
	location string
	noID     bool
}

func card(c cardFixture) string {
	if c.variant == "" {
		c.variant = variantA
	}
	if c.date == "" {
		c.date = "15 mar"
	}
	if c.location == "" {
		c.location = "São Paulo, Vila Mariana - DDD 11"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<li class="%s">`, c.variant)
	if c.noID {
		fmt.Fprintf(&b, `<a data-lurker-detail="list_id" href="https://sp.olx.com.br/ad/%s">`, c.id)
	} else {
		fmt.Fprintf(&b, `<a data-lurker-detail="list_id" data-lurker_list_id="%s" href="https://sp.olx.com.br/ad/%s">`, c.id, c.id)
	}
	fmt.Fprintf(&b, `<div class="fnmrjs-5 jksoiN"><img src="https://img.olx.com.br/%s.jpg"></div>`, c.id)
	if c.name != "" {
		fmt.Fprintf(&b, `<div class="fnmrjs-8 kRlFBv">%s</div>`, c.name)
	}
	fmt.Fprintf(&b, `<div class="fnmrjs-15 clbSMi">%s</div>`, c.price)
	fmt.Fprintf(&b, `<div class="fnmrjs-18 gMKELN">%s</div>`, c.date)
	fmt.Fprintf(&b, `<div class="fnmrjs-21 bktOWr"><p class="fnmrjs-13 hdwqVC">%s</p></div>`, c.location)
	b.WriteString(`</a></li>`)
	return b.String()
}

// resultsPage renders a results page. lastPage <= 0 omits the pagination.
func resultsPage(lastPage int, cards ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="sc-1fcmfeb-0 WQhDk"><ul>`)
	for _, c := range cards {
		b.WriteString(c)
	}
	b.WriteString(`</ul></div>`)
	if lastPage > 0 {
		fmt.Fprintf(&b, `<ul class="sc-1m4ygug-4 cXxSMf"><li><a data-lurker-detail="next_page" href="https://sp.olx.com.br/?o=2&q=notebook">›</a></li>`+
			`<li><a data-lurker-detail="last_page" href="https://sp.olx.com.br/?o=%d&q=notebook">»</a></li></ul>`, lastPage)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

const emptyPage = `<html><body><p>Ops! Tente novamente.</p></body></html>`

// fakeFetcher serves canned bodies per URL. Successive calls walk the list
// and stick at its last entry; unknown URLs get emptyPage.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string][]string
	errs   map[string]error
	calls  map[string]int
	visits []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string][]string{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeFetcher) set(url string, bodies ...string) {
	f.pages[url] = bodies
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.visits = append(f.visits, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}

	body := emptyPage
	if bodies, ok := f.pages[url]; ok && len(bodies) > 0 {
		i := f.calls[url]
		if i >= len(bodies) {
			i = len(bodies) - 1
		}
		body = bodies[i]
	}
	f.calls[url]++
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func mustURL(filter FilterMode, page int) string {
	u, err := SearchURL(DefaultBaseURL, SearchQuery{Term: "notebook", State: "sp"}, filter, page)
	if err != nil {
		panic(err)
	}
	return u
}

func mustDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}
