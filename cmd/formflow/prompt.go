package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formflow/pkg/page"
)

// errAborted signals the user interrupted a prompt (Ctrl+C).
var errAborted = errors.New("input aborted")

type inputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

type confirmConfig struct {
	Message string
	Default bool
	Help    string
}

type selectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int // multi-select defaults; indices into Options
	Help         string
	PageSize     int
}

type textConfig struct {
	Message string
	Default string
	Help    string
}

// promptDriver abstracts the terminal so the fill logic can be exercised
// without one.
type promptDriver interface {
	Input(ctx context.Context, cfg inputConfig) (string, error)
	Password(ctx context.Context, cfg inputConfig) (string, error)
	Confirm(ctx context.Context, cfg confirmConfig) (bool, error)
	Select(ctx context.Context, cfg selectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg selectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg textConfig) (string, error)
}

type surveyDriver struct{}

func newSurveyDriver() promptDriver {
	return &surveyDriver{}
}

func (d *surveyDriver) Input(ctx context.Context, cfg inputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	var out string
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Password(ctx context.Context, cfg inputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Password{
		Message: cfg.Message,
		Help:    cfg.Help,
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg confirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	prompt := &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var out bool
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Select(ctx context.Context, cfg selectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(cfg.Options, out), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg selectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompt := &survey.MultiSelect{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if len(cfg.Defaults) > 0 {
		prompt.Default = valuesAt(cfg.Options, cfg.Defaults)
	}
	var out []string
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return indicesOf(cfg.Options, out), nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg textConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Multiline{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

// fieldGroup is every control sharing one name, in document order. Radio and
// checkbox groups prompt once per group, not once per node.
type fieldGroup struct {
	name   string
	fields []page.Field
}

func groupFields(fields []page.Field) []fieldGroup {
	var groups []fieldGroup
	index := map[string]int{}
	for _, fd := range fields {
		if fd.Hidden {
			continue
		}
		if i, ok := index[fd.Name]; ok {
			groups[i].fields = append(groups[i].fields, fd)
			continue
		}
		index[fd.Name] = len(groups)
		groups = append(groups, fieldGroup{name: fd.Name, fields: []page.Field{fd}})
	}
	return groups
}

// fillForm walks the form's visible controls and asks for each one, writing
// the answers back into the document so Submit picks them up.
func fillForm(ctx context.Context, d promptDriver, f *page.Form) error {
	for _, group := range groupFields(f.Fields()) {
		if err := promptGroup(ctx, d, f, group); err != nil {
			return err
		}
	}
	return nil
}

func promptGroup(ctx context.Context, d promptDriver, f *page.Form, g fieldGroup) error {
	first := g.fields[0]
	label := promptLabel(g.name)

	switch first.Type {
	case "select":
		return promptSelect(ctx, d, f, g.name, label, first)
	case "radio":
		return promptRadio(ctx, d, f, label, g)
	case "checkbox":
		return promptCheckbox(ctx, d, f, label, g)
	case "textarea":
		resp, err := d.TextArea(ctx, textConfig{Message: label, Default: first.Value})
		if err != nil {
			return err
		}
		return f.Set(g.name, resp)
	case "password":
		resp, err := d.Password(ctx, inputConfig{Message: label})
		if err != nil {
			return err
		}
		return f.Set(g.name, resp)
	default:
		cfg := inputConfig{Message: label, Default: first.Value}
		if first.Required {
			cfg.Validator = func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("a value is required")
				}
				return nil
			}
		}
		resp, err := d.Input(ctx, cfg)
		if err != nil {
			return err
		}
		return f.Set(g.name, resp)
	}
}

func promptSelect(ctx context.Context, d promptDriver, f *page.Form, name, label string, fd page.Field) error {
	options := make([]string, 0, len(fd.Options))
	values := make([]string, 0, len(fd.Options))
	defaultIdx := -1
	var defaults []int
	for i, opt := range fd.Options {
		display := opt.Label
		if display == "" {
			display = opt.Value
		}
		options = append(options, display)
		values = append(values, opt.Value)
		if opt.Selected {
			defaultIdx = i
			defaults = append(defaults, i)
		}
	}

	if fd.Multiple {
		indices, err := d.MultiSelect(ctx, selectConfig{
			Message:  label,
			Options:  options,
			Defaults: defaults,
		})
		if err != nil {
			return err
		}
		return f.Set(name, valuesAt(values, indices)...)
	}

	idx, err := d.Select(ctx, selectConfig{
		Message:      label,
		Options:      options,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return fmt.Errorf("selection out of range for %s", name)
	}
	return f.Set(name, values[idx])
}

func promptRadio(ctx context.Context, d promptDriver, f *page.Form, label string, g fieldGroup) error {
	options := make([]string, 0, len(g.fields))
	defaultIdx := -1
	for i, fd := range g.fields {
		value := fd.Value
		if value == "" {
			value = "on"
		}
		options = append(options, value)
		if fd.Checked {
			defaultIdx = i
		}
	}
	idx, err := d.Select(ctx, selectConfig{
		Message:      label,
		Options:      options,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("selection out of range for %s", g.name)
	}
	return f.Set(g.name, options[idx])
}

func promptCheckbox(ctx context.Context, d promptDriver, f *page.Form, label string, g fieldGroup) error {
	if len(g.fields) == 1 {
		value := g.fields[0].Value
		if value == "" {
			value = "on"
		}
		on, err := d.Confirm(ctx, confirmConfig{Message: label, Default: g.fields[0].Checked})
		if err != nil {
			return err
		}
		if on {
			return f.Set(g.name, value)
		}
		return f.Set(g.name)
	}

	options := make([]string, 0, len(g.fields))
	var defaults []int
	for i, fd := range g.fields {
		value := fd.Value
		if value == "" {
			value = "on"
		}
		options = append(options, value)
		if fd.Checked {
			defaults = append(defaults, i)
		}
	}
	indices, err := d.MultiSelect(ctx, selectConfig{
		Message:  label,
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	return f.Set(g.name, valuesAt(options, indices)...)
}

// promptLabel turns a field name into a message: underscores become spaces and
// the first letter is capitalized.
func promptLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

func indicesOf(options, values []string) []int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	var out []int
	for i, option := range options {
		if _, ok := seen[option]; ok {
			out = append(out, i)
		}
	}
	return out
}

func valuesAt(options []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
