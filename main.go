package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
)

const appTitle = "File Path Bookmark"

//go:embed all:frontend/dist
var assets embed.FS

func init() {
	application.RegisterEvent[RaiseEvent]("window-raised")
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runPrimary(guard *SingletonGuard, settingsService *SettingsService, settings Settings, instanceID string) error {
	var journal *RaiseJournal
	if path, err := journalPath(); err != nil {
		slog.Error("failed to resolve raise journal", "error", err)
	} else if db, err := openJournalDB(path); err != nil {
		slog.Error("failed to open raise journal", "error", err)
	} else {
		defer db.Close()
		journal = NewRaiseJournal(db, instanceID, settings.JournalLimit)
	}

	var replies *FrameWriter
	if settings.AckFrames {
		replies = NewFrameWriter(os.Stdout)
	}

	helper := NewHelperService(journal, instanceID, guard.Addr())
	updates := NewUpdateService(settingsService)
	trigger := NewTriggerService(guard.Listener(), hostInput(), StreamListenerOptions{
		Replies:            replies,
		HideOnDialogClosed: settings.HideOnDialogClosed,
	})

	app := application.New(application.Options{
		Name:        appTitle,
		Description: "File and folder bookmarks that follow the browser's file dialog",
		Logger:      slog.Default(),
		Services: []application.Service{
			application.NewService(settingsService),
			application.NewService(helper),
			application.NewService(updates),
			application.NewService(trigger),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	helper.setApp(app)

	window := app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:            appTitle,
		Width:            settings.WindowWidth,
		Height:           settings.WindowHeight,
		AlwaysOnTop:      true,
		Hidden:           true,
		BackgroundColour: application.NewRGB(10, 10, 10),
		URL:              "/",
	})
	window.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		window.Hide()
		e.Cancel()
	})

	presenter := NewWindowPresenter(
		wailsWindow{w: window},
		wailsScreens{app: app, display: settings.Display},
		uiDispatcher(),
		PresenterOptions{Delay: settings.ShowDelay(), Margin: settings.Margin},
	)
	presenter.OnRaised(helper.onRaised)
	helper.setPresenter(presenter)
	trigger.setPresenter(presenter)

	setupTray(app, presenter, logDirectory())

	err := app.Run()
	helper.flush()
	return err
}
