package main

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/RoomFit/internal/ui"
)

func runCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the desktop design studio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(e)
		},
	}
}

func runGUI(e *env) error {
	st, err := e.newStudio(context.Background())
	if err != nil {
		return err
	}

	application := app.NewWithID("com.piwi3910.roomfit")
	application.Settings().SetTheme(ui.NewRoomFitTheme(e.config.Theme))

	window := application.NewWindow("RoomFit")
	appUI := ui.NewApp(window, st, e.config, e.log)
	appUI.SetConfigPath(e.configPath)
	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))

	room := st.Session().Room
	w := float32(room.Width*room.CellSize) + 360
	h := float32(room.Height*room.CellSize) + 120
	window.Resize(fyne.NewSize(w, h))
	window.CenterOnScreen()
	window.ShowAndRun()
	return nil
}
