package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"

	"matchctl/internal/config"
	"matchctl/internal/matchform"
)

const maxPromptRounds = 3

var errPromptAborted = errors.New("create aborted")

// fieldAsker asks for a single value. Select returns the index of the chosen
// option.
type fieldAsker interface {
	Input(message, help, def string) (string, error)
	Select(message, help string, options []string, def int) (int, error)
}

type surveyAsker struct{}

func (surveyAsker) Input(message, help, def string) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Help: help, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyAsker) Select(message, help string, options []string, def int) (int, error) {
	var out string
	prompt := &survey.Select{Message: message, Help: help, Options: options, PageSize: 12}
	if def >= 0 && def < len(options) {
		prompt.Default = options[def]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	for i, o := range options {
		if o == out {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown option %q", out)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errPromptAborted
	}
	return err
}

// runPromptCreate walks the form one field at a time. Fields that fail
// validation are asked again, up to maxPromptRounds times.
func runPromptCreate(cfg config.Config, f matchform.Feed, logger *zap.Logger, asker fieldAsker, out io.Writer) error {
	bridge := lineBridge{out: out}
	ctrl := matchform.New(matchform.Options{
		Feed:     f,
		Notifier: bridge,
		Router:   bridge,
		Page:     bridge,
		Logger:   logger,
		AppName:  cfg.AppName,
		Env:      cfg.Env,
	})
	ctrl.Initialize()
	defer ctrl.Teardown()

	pending := matchform.FieldOrder
	for round := 1; round <= maxPromptRounds; round++ {
		for _, key := range pending {
			if err := askField(ctrl, asker, key); err != nil {
				return err
			}
		}
		if ctrl.Submit() {
			return nil
		}
		pending = ctrl.Fields().InvalidFields()
		names := make([]string, 0, len(pending))
		for _, key := range pending {
			names = append(names, labelFor(key))
		}
		fmt.Fprintf(out, "missing values: %s\n", strings.Join(names, ", "))
	}
	return fmt.Errorf("match not created after %d attempts", maxPromptRounds)
}

func askField(ctrl *matchform.Controller, asker fieldAsker, key matchform.FieldKey) error {
	fields := ctrl.Fields()
	meta := fieldLabels[key]
	if fields.Kind(key) == matchform.FieldText {
		v, err := asker.Input(meta.Label, meta.Help, fields.Value(key))
		if err != nil {
			return err
		}
		fields.Set(key, v)
		return nil
	}

	// The unset placeholder is not offered; a select must be answered.
	options := selectOptions(key, ctrl.Snapshot())[1:]
	if len(options) == 0 {
		return fmt.Errorf("no options for %s on the feed", strings.ToLower(meta.Label))
	}
	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, o.Label)
	}
	idx, err := asker.Select(meta.Label, meta.Help, labels, optionIndex(options, fields.Value(key)))
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("%s: option %d out of range", meta.Label, idx)
	}
	fields.Set(key, options[idx].Value)
	if key == matchform.FieldServer {
		ctrl.OnServerFieldChanged()
	}
	return nil
}
