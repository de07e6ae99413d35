package ui

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/project"
)

// SetConfigPath sets where the settings dialog saves preferences. The
// default is project.DefaultConfigPath.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// showSettingsDialog displays the application settings editor. Theme
// changes apply at once; room, catalog and model settings apply to the
// next start.
func (a *App) showSettingsDialog() {
	cfg := a.config

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.Itoa(*val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	textEntry := func(val *string, placeholder string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(*val)
		e.SetPlaceHolder(placeholder)
		e.OnChanged = func(text string) { *val = text }
		return e
	}

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	levelSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, func(selected string) {
		cfg.LogLevel = selected
	})
	levelSelect.SetSelected(cfg.LogLevel)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(cfg.EvaluationTimeout.String())
	timeoutEntry.OnChanged = func(text string) {
		if d, err := time.ParseDuration(text); err == nil {
			cfg.EvaluationTimeout = d
		}
	}

	seedEntry := widget.NewEntry()
	seedEntry.SetText(strconv.FormatInt(cfg.DoorSeed, 10))
	seedEntry.OnChanged = func(text string) {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			cfg.DoorSeed = v
		}
	}

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("Log Level", levelSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Room Width (cells)", intEntry(&cfg.RoomWidth)),
		widget.NewFormItem("Room Height (cells)", intEntry(&cfg.RoomHeight)),
		widget.NewFormItem("Cell Size (px)", intEntry(&cfg.CellSize)),
		widget.NewFormItem("Catalog File", textEntry(&cfg.Catalog, "built-in catalog")),
		widget.NewFormItem("Door Seed (0 = random)", seedEntry),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Ollama Host", textEntry(&cfg.OllamaHost, "OLLAMA_HOST or localhost")),
		widget.NewFormItem("Embedding Model", textEntry(&cfg.EmbeddingModel, "")),
		widget.NewFormItem("Chat Model", textEntry(&cfg.ChatModel, "")),
		widget.NewFormItem("Evaluation Timeout", timeoutEntry),
	}

	d := dialog.NewForm("Settings", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			if err := cfg.Validate(); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.config = cfg
			fyne.CurrentApp().Settings().SetTheme(NewRoomFitTheme(cfg.Theme))
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
				return
			}
			dialog.ShowInformation("Settings Saved", "Room, catalog and model settings apply on the next start.", a.window)
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 560))
	d.Show()
}

// showBundleDialog exports or imports a settings bundle: the preferences
// and the active furniture catalog in one file.
func (a *App) showBundleDialog() {
	exportBtn := widget.NewButton("Export Bundle...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			if err := project.ExportBundle(path, project.NewBundle(a.config, a.studio.Session().Catalog)); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			dialog.ShowInformation("Export Complete", fmt.Sprintf("Bundle saved to:\n%s", path), a.window)
		}, a.window)
		d.SetFileName("roomfit-settings.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import Bundle...", func() {
		dialog.ShowConfirm("Import Bundle",
			"Importing a bundle replaces your settings and catalog and clears the room.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					defer reader.Close()
					a.importBundle(reader.URI().Path())
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("A bundle holds your settings and the furniture catalog,\nready to use on another machine."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Settings Bundle", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

func (a *App) importBundle(path string) {
	b, err := project.ImportBundle(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	cat, err := b.Catalog()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	a.config = b.Config
	fyne.CurrentApp().Settings().SetTheme(NewRoomFitTheme(b.Config.Theme))
	if err := a.saveConfig(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save imported settings: %w", err), a.window)
		return
	}

	if cat != nil {
		s := a.studio.Session()
		a.studio.Load(engine.NewSession(s.Room, cat, s.Door))
		a.palette.Refresh()
		a.palette.Select(0)
	}
	a.log.Info("bundle imported", zap.String("path", path), zap.String("created_at", b.CreatedAt), zap.Int("kinds", len(b.Kinds)))
	dialog.ShowInformation("Import Complete",
		fmt.Sprintf("Bundle created at %s imported.", b.CreatedAt), a.window)
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	path := a.configPath
	if path == "" {
		path = project.DefaultConfigPath()
	}
	return project.SaveAppConfig(path, a.config)
}
