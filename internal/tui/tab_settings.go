package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdrop/internal/config"
	"github.com/1broseidon/termdrop/internal/easing"
)

// settingsValues are the form-bound values. Numbers are strings for huh and
// converted on submit.
type settingsValues struct {
	DurationMs      string
	Easing          string
	HideOnFocusLoss bool
	DockEnabled     bool
	DockDirection   string
	WidthPercent    string
	HeightPercent   string
	EdgeEnabled     bool
	ThresholdPx     string
	ShowDelayMs     string
	HideDelayMs     string
}

func valuesFromConfig(cfg *config.Config) settingsValues {
	return settingsValues{
		DurationMs:      strconv.Itoa(cfg.Animation.DurationMs),
		Easing:          cfg.Animation.Easing,
		HideOnFocusLoss: cfg.HideOnFocusLoss,
		DockEnabled:     cfg.Dock.Enabled,
		DockDirection:   cfg.Dock.Direction,
		WidthPercent:    strconv.Itoa(cfg.Dock.WidthPercent),
		HeightPercent:   strconv.Itoa(cfg.Dock.HeightPercent),
		EdgeEnabled:     cfg.EdgeTrigger.Enabled,
		ThresholdPx:     strconv.Itoa(cfg.EdgeTrigger.ThresholdPx),
		ShowDelayMs:     strconv.Itoa(cfg.EdgeTrigger.ShowDelayMs),
		HideDelayMs:     strconv.Itoa(cfg.EdgeTrigger.HideDelayMs),
	}
}

// settingChange is one key to write with config.SetValue.
type settingChange struct {
	Key   string
	Value any
}

// settingsChanges diffs the form against cfg and returns the keys that
// differ, in form order.
func settingsChanges(cfg *config.Config, v settingsValues) ([]settingChange, error) {
	var changes []settingChange
	var firstErr error

	addInt := func(key, raw string, current int) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %q is not a number", key, raw)
			}
			return
		}
		if n != current {
			changes = append(changes, settingChange{Key: key, Value: n})
		}
	}
	addBool := func(key string, val, current bool) {
		if val != current {
			changes = append(changes, settingChange{Key: key, Value: val})
		}
	}
	addString := func(key, val, current string) {
		if val != current {
			changes = append(changes, settingChange{Key: key, Value: val})
		}
	}

	addInt("animation.duration_ms", v.DurationMs, cfg.Animation.DurationMs)
	addString("animation.easing", v.Easing, cfg.Animation.Easing)
	addBool("hide_on_focus_loss", v.HideOnFocusLoss, cfg.HideOnFocusLoss)
	addBool("dock.enabled", v.DockEnabled, cfg.Dock.Enabled)
	addString("dock.direction", v.DockDirection, cfg.Dock.Direction)
	addInt("dock.width_percent", v.WidthPercent, cfg.Dock.WidthPercent)
	addInt("dock.height_percent", v.HeightPercent, cfg.Dock.HeightPercent)
	addBool("edge_trigger.enabled", v.EdgeEnabled, cfg.EdgeTrigger.Enabled)
	addInt("edge_trigger.threshold_px", v.ThresholdPx, cfg.EdgeTrigger.ThresholdPx)
	addInt("edge_trigger.show_delay_ms", v.ShowDelayMs, cfg.EdgeTrigger.ShowDelayMs)
	addInt("edge_trigger.hide_delay_ms", v.HideDelayMs, cfg.EdgeTrigger.HideDelayMs)

	if firstErr != nil {
		return nil, firstErr
	}
	return changes, nil
}

func intRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// SettingsTab shows the effective config and edits it in place.
type SettingsTab struct {
	configPath string
	cfg        *config.Config
	loadErr    error

	editing bool
	form    *huh.Form
	values  settingsValues

	saved   string
	saveErr error

	width  int
	height int
}

// NewSettingsTab loads the config at configPath, or the default location.
func NewSettingsTab(configPath string) SettingsTab {
	s := SettingsTab{configPath: configPath}
	s.load()
	return s
}

func (s *SettingsTab) path() (string, error) {
	if s.configPath != "" {
		return s.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (s *SettingsTab) load() {
	path, err := s.path()
	if err != nil {
		s.loadErr = err
		return
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		s.loadErr = err
		return
	}
	s.cfg = res.Config
	s.loadErr = nil
}

// TakeSaved returns the message for a save that just completed, once.
func (s *SettingsTab) TakeSaved() string {
	msg := s.saved
	s.saved = ""
	return msg
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if s.cfg == nil {
				return s, nil
			}
			s.startEditing()
			return s, s.form.Init()
		case "r":
			s.load()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.editing = false
		s.form = nil
		s.apply()
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) startEditing() {
	s.values = valuesFromConfig(s.cfg)
	s.saveErr = nil

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("duration_ms").
				Title("Animation Duration (ms)").
				Description("0 moves the window instantly").
				Validate(intRange(0, 5000)).
				Value(&s.values.DurationMs),
			huh.NewSelect[string]().
				Key("easing").
				Title("Easing").
				Options(huh.NewOptions(easing.Names()...)...).
				Value(&s.values.Easing),
			huh.NewConfirm().
				Key("hide_on_focus_loss").
				Title("Hide On Focus Loss").
				Value(&s.values.HideOnFocusLoss),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("dock_enabled").
				Title("Dock").
				Description("Size the window from the work area instead of its own geometry").
				Value(&s.values.DockEnabled),
			huh.NewSelect[string]().
				Key("dock_direction").
				Title("Dock Direction").
				Options(huh.NewOptions(config.DirectionAuto, "left", "right", "top", "bottom")...).
				Value(&s.values.DockDirection),
			huh.NewInput().
				Key("width_percent").
				Title("Dock Width (%)").
				Validate(intRange(1, 100)).
				Value(&s.values.WidthPercent),
			huh.NewInput().
				Key("height_percent").
				Title("Dock Height (%)").
				Validate(intRange(1, 100)).
				Value(&s.values.HeightPercent),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("edge_enabled").
				Title("Edge Trigger").
				Description("Show the window when the cursor touches its edge").
				Value(&s.values.EdgeEnabled),
			huh.NewInput().
				Key("threshold_px").
				Title("Edge Threshold (px)").
				Validate(intRange(0, 1000)).
				Value(&s.values.ThresholdPx),
			huh.NewInput().
				Key("show_delay_ms").
				Title("Show Delay (ms)").
				Validate(intRange(0, 60000)).
				Value(&s.values.ShowDelayMs),
			huh.NewInput().
				Key("hide_delay_ms").
				Title("Hide Delay (ms)").
				Validate(intRange(0, 60000)).
				Value(&s.values.HideDelayMs),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

// apply writes the changed keys one at a time so comments and unrelated
// keys in the file survive.
func (s *SettingsTab) apply() {
	changes, err := settingsChanges(s.cfg, s.values)
	if err != nil {
		s.saveErr = err
		return
	}
	if len(changes) == 0 {
		s.saved = "no changes"
		return
	}
	path, err := s.path()
	if err != nil {
		s.saveErr = err
		return
	}
	for _, c := range changes {
		if err := config.SetValue(path, c.Key, c.Value); err != nil {
			s.saveErr = err
			s.load()
			return
		}
	}
	s.load()
	s.saved = fmt.Sprintf("saved %d setting(s) to %s", len(changes), path)
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	style := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			dimStyle.Render("  (esc to cancel)")
		return style.Render(header + "\n\n" + s.form.View())
	}

	if s.cfg == nil {
		return style.Render(dimStyle.Render(fmt.Sprintf("No config loaded: %v", s.loadErr)))
	}

	cfg := s.cfg
	lines := []string{
		row("Toggle Hotkey", cfg.ToggleHotkey),
		row("Track Hotkey", cfg.TrackHotkey),
		row("Log Level", cfg.LogLevel),
		"",
		row("Animation", fmt.Sprintf("%dms %s", cfg.Animation.DurationMs, cfg.Animation.Easing)),
		row("Hide On Focus Loss", strconv.FormatBool(cfg.HideOnFocusLoss)),
		row("Dock", fmt.Sprintf("%v %s %d%%x%d%%", cfg.Dock.Enabled, cfg.Dock.Direction, cfg.Dock.WidthPercent, cfg.Dock.HeightPercent)),
		row("Edge Trigger", fmt.Sprintf("%v threshold:%dpx show:%dms hide:%dms",
			cfg.EdgeTrigger.Enabled, cfg.EdgeTrigger.ThresholdPx, cfg.EdgeTrigger.ShowDelayMs, cfg.EdgeTrigger.HideDelayMs)),
		"",
	}
	if s.loadErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("  "+s.loadErr.Error()))
	}
	if s.saveErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("  save failed: "+s.saveErr.Error()))
	}
	lines = append(lines, dimStyle.Render("  e: edit  r: re-read config file"))

	return style.Render(strings.Join(lines, "\n"))
}
