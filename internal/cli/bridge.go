package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"matchctl/internal/model"
)

// screenBridge collects what the form controller asks of the surrounding
// application: the page title, breadcrumbs, the last notification and a
// pending navigation. The TUI drains it after every controller call.
type screenBridge struct {
	mu           sync.Mutex
	title        string
	breadcrumbs  []model.Breadcrumb
	notification *model.Notification
	route        string
}

func (b *screenBridge) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *screenBridge) SetBreadcrumbs(crumbs []model.Breadcrumb) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breadcrumbs = append([]model.Breadcrumb(nil), crumbs...)
}

func (b *screenBridge) Notify(n model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notification = &n
}

func (b *screenBridge) Navigate(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.route = path
}

func (b *screenBridge) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

func (b *screenBridge) Breadcrumbs() []model.Breadcrumb {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Breadcrumb(nil), b.breadcrumbs...)
}

func (b *screenBridge) takeRoute() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.route
	b.route = ""
	return r
}

func (b *screenBridge) takeNotification() (model.Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notification == nil {
		return model.Notification{}, false
	}
	n := *b.notification
	b.notification = nil
	return n, true
}

func renderBreadcrumbs(crumbs []model.Breadcrumb) string {
	parts := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		parts = append(parts, c.Name)
	}
	return strings.Join(parts, " / ")
}

type lineBridge struct {
	out io.Writer
}

func (b lineBridge) SetTitle(title string) {
	fmt.Fprintln(b.out, title)
}

func (b lineBridge) SetBreadcrumbs(crumbs []model.Breadcrumb) {
	fmt.Fprintln(b.out, renderBreadcrumbs(crumbs))
	fmt.Fprintln(b.out)
}

func (b lineBridge) Notify(n model.Notification) {
	fmt.Fprintf(b.out, "[%s] %s\n", n.Color, n.Title)
}

func (b lineBridge) Navigate(path string) {
	fmt.Fprintf(b.out, "-> %s\n", path)
}
