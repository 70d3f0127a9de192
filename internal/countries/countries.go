// Package countries provides the ISO-3166 alpha-2 country list offered for
// team nationality. The list is derived once from CLDR data and never changes
// for the lifetime of the process.
package countries

import (
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	loadOnce sync.Once
	all      []Country
	byCode   map[string]Country
)

func load() {
	namer := display.English.Regions()
	byCode = make(map[string]Country, 256)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || !region.IsCountry() || region.String() != code {
				continue
			}
			name := namer.Name(region)
			if name == "" {
				continue
			}
			c := Country{Code: code, Name: name}
			all = append(all, c)
			byCode[code] = c
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
}

// List returns the countries sorted by code. Callers get their own copy.
func List() []Country {
	loadOnce.Do(load)
	return append([]Country{}, all...)
}

func Codes() []string {
	list := List()
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Code)
	}
	return out
}

func Lookup(code string) (Country, bool) {
	loadOnce.Do(load)
	c, ok := byCode[code]
	return c, ok
}
