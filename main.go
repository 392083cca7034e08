package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/giwty/title-menu/logger"
	"github.com/giwty/title-menu/settings"
)

var (
	hard         = flag.Bool("hard", false, "drop cached display names and fetch them again")
	checkUpdates = flag.Bool("check-updates", false, "check for a newer release before loading")
	debug        = flag.Bool("debug", false, "debug logging, overrides settings.json")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	exePath, workingFolder, err := settings.GetWorkingFolder()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate working folder - %v\n", err)
		return 1
	}

	appSettings := settings.NewAppSettings(workingFolder)
	l := logger.GetSugar(appSettings.BaseFolder(), appSettings.Debug || *debug)
	defer logger.Defer()

	l.Infof("[Executable: %v]", exePath)
	l.Infof("[Working directory: %v]", workingFolder)
	l.Infof("[Settings: %v]", appSettings.ToJSON())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *checkUpdates {
		newUpdate, latest, err := settings.CheckForUpdates(ctx)
		if err != nil {
			l.Warnf("update check failed - %v", err)
		} else if newUpdate {
			fmt.Printf("\n=== New version %v available, download from Github ===\n", latest)
		}
	}

	c := CreateConsole(appSettings, l, *hard)
	if err := c.Start(ctx); err != nil {
		l.Errorf("failed to load game list - %v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}
