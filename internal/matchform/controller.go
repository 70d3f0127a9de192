// Package matchform implements the create-match form: the field registry,
// its validation rules, and the controller that keeps the form in step with
// the live feed and submits new matches.
package matchform

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"matchctl/internal/feed"
	"matchctl/internal/model"
)

const HomePath = "/"

const createdTitle = "Match created!"

type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

type Options struct {
	Feed     Feed
	Fields   *Registry
	NewID    func() string
	Notifier Notifier
	Router   Router
	Page     PageMeta
	Logger   *zap.Logger
	OnChange func()
	AppName  string
	Env      string
}

// Controller owns the synchronized snapshot and the submission flow.
// Every method is safe for concurrent use; snapshot replacement and
// submission are serialized through one mutex.
type Controller struct {
	mu          sync.Mutex
	feed        Feed
	fields      *Registry
	newID       func() string
	notifier    Notifier
	router      Router
	page        PageMeta
	logger      *zap.Logger
	onChange    func()
	appName     string
	env         string
	snapshot    model.Snapshot
	derivedMap  string
	sub         feed.Subscription
	initialized bool
	state       State
}

func New(opts Options) *Controller {
	fields := opts.Fields
	if fields == nil {
		fields = NewRegistry()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		feed:     opts.Feed,
		fields:   fields,
		newID:    newID,
		notifier: opts.Notifier,
		router:   opts.Router,
		page:     opts.Page,
		logger:   logger.With(zap.String("component", "matchform")),
		onChange: opts.OnChange,
		appName:  opts.AppName,
		env:      opts.Env,
		snapshot: model.Snapshot{}.Normalize(),
		state:    StateEditing,
	}
}

func Breadcrumbs() []model.Breadcrumb {
	return []model.Breadcrumb{
		{Name: "Home", URL: HomePath},
		{Name: "Match", URL: HomePath},
		{Name: "Create"},
	}
}

func (c *Controller) Title() string {
	return fmt.Sprintf("Create new match | %s %s", c.appName, c.env)
}

// Initialize subscribes to feed updates, seeds the snapshot from the feed's
// current value and publishes page metadata. The seed is read after the
// subscription exists so no update falls between the two.
func (c *Controller) Initialize() {
	c.mu.Lock()
	if c.initialized || c.state == StateTornDown {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.derivedMap = ""
	c.mu.Unlock()

	var sub feed.Subscription
	if c.feed != nil {
		sub = c.feed.Subscribe(feed.EventUpdate, c.OnFeedUpdate)
	}

	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		if c.feed != nil {
			c.feed.Unsubscribe(sub)
		}
		return
	}
	c.sub = sub
	if c.feed != nil {
		c.snapshot = c.feed.CurrentValue().Normalize()
	}
	servers := len(c.snapshot.Servers)
	c.mu.Unlock()

	if c.page != nil {
		c.page.SetTitle(c.Title())
	}
	if c.notifier != nil {
		c.notifier.SetBreadcrumbs(Breadcrumbs())
	}
	c.logger.Debug("form initialized", zap.Int("servers", servers))
}

// OnFeedUpdate replaces the snapshot with s. Nothing else is touched.
func (c *Controller) OnFeedUpdate(s model.Snapshot) {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		c.logger.Debug("ignoring update after teardown")
		return
	}
	c.snapshot = s.Normalize()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Teardown releases the feed subscription. It is safe to call at any time and
// more than once.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return
	}
	c.state = StateTornDown
	sub := c.sub
	c.sub = feed.Subscription{}
	c.mu.Unlock()

	if c.feed != nil && sub.Valid() {
		c.feed.Unsubscribe(sub)
	}
	c.logger.Debug("form torn down")
}

// OnServerFieldChanged recomputes the map from the selected server. When the
// selection matches no server the map is left as it is.
func (c *Controller) OnServerFieldChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := ResolveMap(c.fields.Value(FieldServer), c.snapshot.Servers)
	if !ok {
		return
	}
	c.derivedMap = m
	c.fields.Set(FieldMap, m)
}

func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Controller) validateLocked() bool {
	for _, key := range FieldOrder {
		c.fields.MarkInvalid(key, false)
	}
	hasErrors := false
	for _, key := range FieldOrder {
		if fieldRules[key](c.fields.Value(key)) {
			hasErrors = true
			c.fields.MarkInvalid(key, true)
		}
	}
	return hasErrors
}

// Submit validates the form and, when it is clean, sends the match_create
// command, resets the fields, notifies and navigates home. It reports whether
// the command was sent. Delivery of the command is best-effort.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	if c.state != StateEditing {
		c.mu.Unlock()
		return false
	}
	c.state = StateSubmitting
	if c.validateLocked() {
		c.state = StateEditing
		c.mu.Unlock()
		c.logger.Debug("submit rejected", zap.Int("invalid_fields", len(c.fields.InvalidFields())))
		return false
	}
	draft := c.draftLocked()
	c.mu.Unlock()

	if c.feed != nil {
		c.feed.Send(feed.CommandMatchCreate, draft)
	}
	c.logger.Info("match create sent",
		zap.String("match_id", draft.ID),
		zap.String("server", draft.Server),
		zap.String("map", draft.Map),
	)

	c.fields.Reset()
	c.mu.Lock()
	c.derivedMap = ""
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.Notify(model.Notification{Title: createdTitle, Color: model.ColorSuccess})
	}
	if c.router != nil {
		c.router.Navigate(HomePath)
	}

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.state = StateEditing
	}
	c.mu.Unlock()
	return true
}

func (c *Controller) draftLocked() model.MatchDraft {
	f := c.fields
	return model.MatchDraft{
		ID:          c.newID(),
		Team1:       model.Team{Name: f.Value(FieldTeam1Name), Country: f.Value(FieldTeam1Country)},
		Team2:       model.Team{Name: f.Value(FieldTeam2Name), Country: f.Value(FieldTeam2Country)},
		MatchGroup:  f.Value(FieldMatchGroup),
		Map:         f.Value(FieldMap),
		KnifeConfig: f.Value(FieldKnifeConfig),
		MatchConfig: f.Value(FieldMainConfig),
		Server:      f.Value(FieldServer),
		Status:      model.StatusCreated,
	}
}

func (c *Controller) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Normalize()
}

func (c *Controller) DerivedMap() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.derivedMap
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Fields() *Registry {
	return c.fields
}
