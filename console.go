package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/giwty/title-menu/db"
	"github.com/giwty/title-menu/fileio"
	"github.com/giwty/title-menu/gamelist"
	"github.com/giwty/title-menu/imaging"
	"github.com/giwty/title-menu/platform"
	"github.com/giwty/title-menu/settings"
	"github.com/jedib0t/go-pretty/table"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"robpike.io/nihongo"
)

type Console struct {
	appSettings *settings.AppSettings
	sugarLogger *zap.SugaredLogger
	progressBar *progressbar.ProgressBar
	// drop cached display names before loading
	hard    bool
	updated atomic.Int32
}

func CreateConsole(appSettings *settings.AppSettings, sugarLogger *zap.SugaredLogger, hard bool) *Console {
	return &Console{appSettings: appSettings, sugarLogger: sugarLogger, hard: hard}
}

func (c *Console) Start(ctx context.Context) error {
	categories, err := gamelist.ParseCategories(c.appSettings.Categories)
	if err != nil {
		return fmt.Errorf("invalid categories in settings: %w", err)
	}

	overrides, err := settings.LoadNameOverrides(c.appSettings.NamesPath())
	if err != nil {
		c.sugarLogger.Warnf("ignoring name overrides - %v", err)
	}

	titleRoot := c.appSettings.TitleRootPath()
	var metadata gamelist.MetadataSource = platform.NewMetaXMLSource(titleRoot)
	if c.appSettings.MetadataDB {
		metadataDB, err := db.NewPersistentDB(c.appSettings.MetadataDBPath(), c.sugarLogger)
		if err != nil {
			c.sugarLogger.Warnf("metadata db disabled - %v", err)
		} else {
			defer metadataDB.Close()
			metadataCache := db.NewMetadataCache(metadataDB, metadata, c.sugarLogger)
			if c.hard {
				if err := metadataCache.ClearMetadata(); err != nil {
					c.sugarLogger.Warnf("failed to clear metadata db - %v", err)
				}
			}
			c.sugarLogger.Debugf("%v display names in the metadata db", metadataCache.Len())
			metadata = metadataCache
		}
	}
	metadata = platform.NewOverrideSource(overrides, metadata)

	storage := fileio.NewOSStorage()
	opts := gamelist.Options{
		CacheFile:  c.appSettings.CacheFilePath(),
		IconFolder: c.appSettings.IconFolderPath(),
		Categories: categories,
		Async:      c.appSettings.AsyncEnrichment,
		VWiiIcon:   c.readVWiiIcon(storage),
		Logger:     c.sugarLogger,
	}
	if isTerminal() {
		c.progressBar = progressbar.NewOptions(1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts.Progress = c
	}

	gameList := gamelist.New(gamelist.Adapters{
		Titles:   platform.NewDirTitleSource(titleRoot, c.sugarLogger),
		Metadata: metadata,
		Icons:    platform.NewNativeIcons(),
		Images:   imaging.NewPipeline(imaging.ICON_SIZE),
		Storage:  storage,
	}, opts)
	defer gameList.Close()

	unsubscribe := gameList.Subscribe(gamelist.ObserverFuncs{
		Updated: func(t gamelist.Title) {
			c.updated.Add(1)
			c.sugarLogger.Debugf("updated %v [%v]", t.IdString(), t.Name)
		},
	})
	defer unsubscribe()

	fmt.Printf("Scanning titles in [%v]\n", titleRoot)
	cnt := gameList.Load(ctx)
	gameList.Wait()
	if c.progressBar != nil {
		c.progressBar.Finish()
	}

	c.printTitles(gameList.Titles())
	fmt.Printf("\n%v titles, %v updated by enrichment\n", cnt, c.updated.Load())

	// the console has no renderer holding textures, release right away
	released := gameList.ReleaseQueue().Drain(func(*imaging.Texture) {})
	c.sugarLogger.Debugf("released %v textures", released)
	return nil
}

func (c *Console) readVWiiIcon(storage *fileio.OSStorage) []byte {
	iconPath := c.appSettings.VWiiIconPath()
	if iconPath == "" {
		return nil
	}
	data, err := storage.ReadFile(iconPath)
	if err != nil {
		c.sugarLogger.Warnf("failed to read vWii icon %v - %v", iconPath, err)
		return nil
	}
	return data
}

func (c *Console) printTitles(titles []gamelist.Title) {
	if len(titles) == 0 {
		fmt.Print("\nNo titles found\n\n")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleColoredBright)
	t.AppendHeader(table.Row{"#", "Name", "TitleId", "Type", "Path", "Icon"})
	for i, title := range titles {
		icon := ""
		if title.Image != nil {
			b := title.Image.Bounds()
			icon = fmt.Sprintf("%vx%v", b.Dx(), b.Dy())
		}
		t.AppendRow([]interface{}{i, c.displayName(title.Name), title.IdString(), title.AppType, title.GamePath, icon})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(titles)})
	t.Render()
}

func (c *Console) displayName(name string) string {
	if c.appSettings.RomanizeNames {
		return nihongo.RomajiString(name)
	}
	return name
}

func (c *Console) UpdateProgress(curr int, total int, message string) {
	c.progressBar.ChangeMax(total)
	c.progressBar.Describe(message)
	c.progressBar.Set(curr)
}

func isTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
