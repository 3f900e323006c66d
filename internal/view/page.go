package view

import (
	"context"
	"sync"
)

// Page holds the two independent sections shown to one visitor.
type Page struct {
	Country  *CountryView
	Province *ProvinceView
}

// Defaults are the initial selections of a new Page.
type Defaults struct {
	Country  string
	Province string
}

// NewPage creates both views; each starts its first fetch immediately.
func NewPage(ctx context.Context, global GlobalFetcher, canada ProvinceFetcher, def Defaults) *Page {
	return &Page{
		Country:  NewCountryView(ctx, global, def.Country),
		Province: NewProvinceView(ctx, canada, def.Province),
	}
}

// Wait waits for both views to settle or ctx to end.
func (p *Page) Wait(ctx context.Context) {
	var wg sync.WaitGroup
	for _, v := range []View{p.Country, p.Province} {
		wg.Add(1)
		go func(v View) {
			defer wg.Done()
			v.Wait(ctx)
		}(v)
	}
	wg.Wait()
}

// Reload refetches both views.
func (p *Page) Reload() {
	p.Country.Reload()
	p.Province.Reload()
}
