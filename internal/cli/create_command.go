package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"matchctl/internal/config"
	"matchctl/internal/feed"
	"matchctl/internal/logging"
	"matchctl/internal/matchform"
	"matchctl/internal/model"
)

type createScreen int

const (
	createScreenHome createScreen = iota
	createScreenForm
)

type createForm struct {
	ctrl  *matchform.Controller
	index int
	input textinput.Model
	err   string
}

type createModel struct {
	cfg      config.Config
	feed     matchform.Feed
	logger   *zap.Logger
	sink     *msgSink
	bridge   *screenBridge
	screen   createScreen
	snapshot model.Snapshot
	cursor   int
	width    int
	height   int
	form     *createForm
	openForm bool

	statusMessage string
	statusColor   string
	feedDown      bool
}

type feedUpdatedMsg struct {
	snapshot model.Snapshot
}

type formSyncedMsg struct{}

type feedClosedMsg struct {
	err error
}

type openFormMsg struct{}

// msgSink forwards messages from feed goroutines into the running program.
// A nil sink, or one without a program, drops them.
type msgSink struct {
	p atomic.Pointer[tea.Program]
}

func (s *msgSink) Send(msg tea.Msg) {
	if s == nil {
		return
	}
	if p := s.p.Load(); p != nil {
		p.Send(msg)
	}
}

var (
	createTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	createMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	createErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	createOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	createWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	createPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	createSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

func newCreateCmd(g *globalOptions) *cobra.Command {
	var prompt bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "open the create-match form against the live feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd.Context(), g, prompt, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&prompt, "prompt", false, "ask for each field in turn instead of opening the full-screen form")
	return cmd
}

func runCreate(ctx context.Context, g *globalOptions, prompt bool, out io.Writer) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("create requires an interactive terminal (TTY)")
	}
	if !prompt && cfg.LogFile == logging.Stderr {
		return errors.New("create cannot log to stderr while the form owns the terminal; use --log-file <path>")
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := connectFeed(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if prompt {
		return runPromptCreate(cfg, client, logger, surveyAsker{}, out)
	}
	return runCreateTUI(cfg, client, logger)
}

// connectFeed dials the feed and waits up to the connect timeout for the
// first snapshot. A feed that stays silent is not fatal; the form starts
// empty and fills in when the snapshot arrives.
func connectFeed(ctx context.Context, cfg config.Config, logger *zap.Logger) (*feed.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := feed.Dial(ctx, cfg.FeedURL, feed.ClientOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	select {
	case <-client.Ready():
	case <-client.Done():
		_ = client.Close()
		err := client.Err()
		if err == nil {
			err = feed.ErrClosed
		}
		return nil, fmt.Errorf("feed closed before the first snapshot: %w", err)
	case <-ctx.Done():
		logger.Warn("no snapshot yet, starting with an empty form", zap.Duration("waited", cfg.ConnectTimeout))
	}
	return client, nil
}

func runCreateTUI(cfg config.Config, client *feed.Client, logger *zap.Logger) error {
	sink := &msgSink{}
	m := newCreateModel(cfg, client, logger, sink)
	p := tea.NewProgram(m, tea.WithAltScreen())
	sink.p.Store(p)

	// Subscribed before Run so Init's feed read cannot miss an update.
	sub := client.Subscribe(feed.EventUpdate, func(s model.Snapshot) {
		sink.Send(feedUpdatedMsg{snapshot: s})
	})
	defer client.Unsubscribe(sub)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-client.Done():
			sink.Send(feedClosedMsg{err: client.Err()})
		case <-stop:
		}
	}()

	finalModel, err := p.Run()
	sink.p.Store(nil)
	if fm, ok := finalModel.(createModel); ok && fm.form != nil {
		fm.form.ctrl.Teardown()
	}
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("create requires an interactive terminal (TTY)")
		}
		return err
	}
	return nil
}

func newCreateModel(cfg config.Config, f matchform.Feed, logger *zap.Logger, sink *msgSink) createModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	snap := model.Snapshot{}.Normalize()
	if f != nil {
		snap = f.CurrentValue().Normalize()
	}
	return createModel{
		cfg:      cfg,
		feed:     f,
		logger:   logger,
		sink:     sink,
		bridge:   &screenBridge{},
		screen:   createScreenHome,
		snapshot: snap,
		openForm: true,
	}
}

func (m createModel) homeTitle() string {
	return fmt.Sprintf("Matches | %s %s", m.cfg.AppName, m.cfg.Env)
}

func (m createModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.syncFeedCmd()}
	if m.openForm {
		cmds = append(cmds, func() tea.Msg { return openFormMsg{} })
	} else {
		cmds = append(cmds, tea.SetWindowTitle(m.homeTitle()))
	}
	return tea.Batch(cmds...)
}

// syncFeedCmd re-reads the feed once the program runs. The caller subscribes
// before starting the program, so anything published after the model was
// built arrives either here or through the subscription.
func (m createModel) syncFeedCmd() tea.Cmd {
	f := m.feed
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		return feedUpdatedMsg{snapshot: f.CurrentValue()}
	}
}

func (m createModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.input.Width = clampInt(m.width-8, 20, 120)
		}
		return m, nil
	case openFormMsg:
		return m.startForm()
	case feedUpdatedMsg:
		m.snapshot = msg.snapshot.Normalize()
		m.cursor = clampInt(m.cursor, 0, len(m.snapshot.Matches))
		return m, nil
	case formSyncedMsg:
		return m, nil
	case feedClosedMsg:
		m.feedDown = true
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
		} else {
			m.statusMessage = "error: feed disconnected"
		}
		m.statusColor = model.ColorDanger
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.screen == createScreenForm {
		return m.updateForm(keyMsg)
	}
	return m.updateHome(keyMsg)
}

func (m createModel) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := len(m.snapshot.Matches) + 1
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < total-1 {
			m.cursor++
		}
		return m, nil
	case "n":
		return m.startForm()
	case "enter":
		if m.cursor == len(m.snapshot.Matches) {
			return m.startForm()
		}
	}
	return m, nil
}

func (m createModel) startForm() (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m, nil
	}
	sink := m.sink
	ctrl := matchform.New(matchform.Options{
		Feed:     m.feed,
		Notifier: m.bridge,
		Router:   m.bridge,
		Page:     m.bridge,
		Logger:   m.logger,
		OnChange: func() { sink.Send(formSyncedMsg{}) },
		AppName:  m.cfg.AppName,
		Env:      m.cfg.Env,
	})
	ctrl.Initialize()

	in := textinput.New()
	in.Prompt = "> "
	in.Width = clampInt(m.width-8, 20, 120)
	in.Focus()

	m.form = &createForm{ctrl: ctrl, input: in}
	m.form.loadFieldIntoInput()
	m.screen = createScreenForm
	m.openForm = false
	if !m.feedDown {
		m.statusMessage = ""
	}
	return m, tea.SetWindowTitle(m.bridge.Title())
}

func (m createModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.screen = createScreenHome
		return m, nil
	}
	f := m.form

	key := strings.ToLower(msg.String())
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.statusMessage = "create cancelled"
		m.statusColor = ""
		return m.goHome()
	case "up", "shift+tab":
		f.commitInput()
		if f.index > 0 {
			f.index--
		}
		f.loadFieldIntoInput()
		return m, nil
	case "down", "tab":
		f.commitInput()
		if f.index < len(matchform.FieldOrder)-1 {
			f.index++
		}
		f.loadFieldIntoInput()
		return m, nil
	case " ", "space", "right", "l":
		if f.currentKind() == matchform.FieldSelect {
			f.cycleSelect(1)
			return m, nil
		}
	case "left", "h":
		if f.currentKind() == matchform.FieldSelect {
			f.cycleSelect(-1)
			return m, nil
		}
	case "enter", "ctrl+s":
		f.commitInput()
		if f.index < len(matchform.FieldOrder)-1 && key != "ctrl+s" {
			f.index++
			f.loadFieldIntoInput()
			return m, nil
		}
		return m.submitForm()
	}

	if f.currentKind() == matchform.FieldSelect {
		return m, nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.ctrl.Fields().Set(f.currentKey(), f.input.Value())
	return m, cmd
}

func (m createModel) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	if !f.ctrl.Submit() {
		invalid := f.ctrl.Fields().InvalidFields()
		if len(invalid) > 0 {
			f.index = fieldIndex(invalid[0])
			f.loadFieldIntoInput()
			f.err = fmt.Sprintf("%d field(s) need a value", len(invalid))
		}
		return m, nil
	}
	f.err = ""
	if n, ok := m.bridge.takeNotification(); ok {
		m.statusMessage = n.Title
		m.statusColor = n.Color
	}
	if m.bridge.takeRoute() == matchform.HomePath {
		return m.goHome()
	}
	return m, nil
}

func (m createModel) goHome() (tea.Model, tea.Cmd) {
	if m.form != nil {
		m.form.ctrl.Teardown()
		m.form = nil
	}
	m.screen = createScreenHome
	m.cursor = clampInt(m.cursor, 0, len(m.snapshot.Matches))
	return m, tea.SetWindowTitle(m.homeTitle())
}

func fieldIndex(key matchform.FieldKey) int {
	for i, k := range matchform.FieldOrder {
		if k == key {
			return i
		}
	}
	return 0
}

func (f *createForm) currentKey() matchform.FieldKey {
	return matchform.FieldOrder[f.index]
}

func (f *createForm) currentKind() matchform.FieldKind {
	return f.ctrl.Fields().Kind(f.currentKey())
}

func (f *createForm) commitInput() {
	if f.currentKind() != matchform.FieldText {
		return
	}
	f.ctrl.Fields().Set(f.currentKey(), f.input.Value())
}

func (f *createForm) loadFieldIntoInput() {
	if f.currentKind() != matchform.FieldText {
		f.input.SetValue("")
		f.input.Placeholder = ""
		return
	}
	f.input.SetValue(f.ctrl.Fields().Value(f.currentKey()))
	f.input.Placeholder = labelFor(f.currentKey())
	f.input.CursorEnd()
}

// cycleSelect moves the current select field by delta through its options.
// The placeholder is never offered again once a field has real options.
// Picking a server fills the map field from that server.
func (f *createForm) cycleSelect(delta int) {
	key := f.currentKey()
	options := selectOptions(key, f.ctrl.Snapshot())
	n := len(options) - 1
	if n <= 0 {
		return
	}
	i := optionIndex(options, f.ctrl.Fields().Value(key))
	switch {
	case i > 0:
		i = (i-1+delta%n+n)%n + 1
	case delta < 0:
		i = n
	default:
		i = 1
	}
	f.ctrl.Fields().Set(key, options[i].Value)
	if key == matchform.FieldServer {
		f.ctrl.OnServerFieldChanged()
	}
}

func statusStyle(color string) lipgloss.Style {
	switch color {
	case model.ColorSuccess:
		return createOKStyle
	case model.ColorDanger:
		return createErrorStyle
	case model.ColorWarning:
		return createWarnStyle
	default:
		return createMutedStyle
	}
}
