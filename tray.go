package main

import (
	"log/slog"

	"github.com/pkg/browser"
	"github.com/wailsapp/wails/v3/pkg/application"
)

func setupTray(app *application.App, presenter RaiseRequester, logDir string) {
	menu := application.NewMenu()
	menu.Add("Open").OnClick(func(*application.Context) {
		presenter.RequestRaise("tray")
	})
	menu.Add("Hide").OnClick(func(*application.Context) {
		presenter.RequestHide("tray")
	})
	if logDir != "" {
		menu.AddSeparator()
		menu.Add("Open log folder").OnClick(func(*application.Context) {
			if err := browser.OpenFile(logDir); err != nil {
				slog.Error("failed to open log folder", "dir", logDir, "error", err)
			}
		})
	}
	menu.AddSeparator()
	menu.Add("Quit").OnClick(func(*application.Context) {
		app.Quit()
	})

	tray := app.SystemTray.New()
	tray.SetLabel(appTitle)
	tray.SetMenu(menu)
	tray.OnClick(func() {
		presenter.RequestRaise("tray")
	})
}
