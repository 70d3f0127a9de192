package matchform

import (
	"matchctl/internal/feed"
	"matchctl/internal/model"
)

// Feed is the live channel the form reads snapshots from and sends commands to.
type Feed interface {
	CurrentValue() model.Snapshot
	Subscribe(event string, handler feed.Handler) feed.Subscription
	Unsubscribe(sub feed.Subscription)
	Send(command string, payload any)
}

type Notifier interface {
	SetBreadcrumbs(trail []model.Breadcrumb)
	Notify(n model.Notification)
}

type Router interface {
	Navigate(path string)
}

type PageMeta interface {
	SetTitle(title string)
}
