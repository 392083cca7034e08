package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mcuadros/go-version"
	"go.uber.org/zap"
)

const (
	SETTINGS_DIR        = "title-menu"
	SETTINGS_FILENAME   = "settings.json"
	NAMES_FILENAME      = "names.properties"
	METADATA_DB_NAME    = "men.db"
	MEN_VERSION         = "1.2.0"
	DEFAULT_SD_ROOT     = "sd"
	DEFAULT_TITLE_ROOT  = "mlc"
	DEFAULT_CACHE_FILE  = "wiiu/men/men.cache"
	DEFAULT_ICON_FOLDER = "wiiu/men/icon"
)

// Setting of the application
type AppSettings struct {
	// Extra internal settings
	// `json:"-"` to ignore when marshalling
	baseFolder string `json:"-"`
	Homedir    string `json:"-"`
	// Unmarshalled from the JSON file
	Version         string   `json:"version"`
	SdRoot          string   `json:"sd_root"`
	TitleRoot       string   `json:"title_root"`
	CacheFile       string   `json:"cache_file"`
	IconFolder      string   `json:"icon_folder"`
	Categories      []string `json:"categories"`
	AsyncEnrichment bool     `json:"async_enrichment"`
	Debug           bool     `json:"debug"`
	RomanizeNames   bool     `json:"romanize_names"`
	VWiiIcon        string   `json:"vwii_icon"`
	MetadataDB      bool     `json:"metadata_db"`
}

// Constructor for settings
func NewAppSettings(workingFolder string) *AppSettings {
	a := AppSettings{}
	a.setBase(workingFolder)
	a.switchToHomedir()
	a.read()

	return &a
}

// Read settings from a given folder, without moving to the homedir
func ReadSettings(baseFolder string) *AppSettings {
	a := AppSettings{}
	a.setBase(baseFolder)
	a.read()

	return &a
}

// Set the base bolder
func (a *AppSettings) setBase(base string) {
	a.baseFolder = base
}

// Base folder holding settings, log, names and metadata db
func (a *AppSettings) BaseFolder() string {
	return a.baseFolder
}

// Switch the settings base folder inside the homedir
func (a *AppSettings) switchToHomedir() {
	var homedirErr error
	a.Homedir, homedirErr = os.UserHomeDir()

	if homedirErr == nil {
		basedir := a.GetHomedirPath()

		// Create a folder if it does not exist
		if mkDirErr := os.MkdirAll(basedir, os.ModePerm); mkDirErr == nil {
			// Change the base
			a.setBase(basedir)
		}
	}
}

// Get the homedir settings path
func (a *AppSettings) GetHomedirPath() string {
	return filepath.Join(a.Homedir, SETTINGS_DIR)
}

// Get the settings file path
func (a *AppSettings) getPath() string {
	return filepath.Join(a.baseFolder, SETTINGS_FILENAME)
}

// Read the file
func (a *AppSettings) read() {
	// Reading the file
	buf, bufErr := os.ReadFile(a.getPath())

	// If error fill with defaults
	if bufErr != nil {
		zap.S().Warnf("Missing or corrupted config file, creating a new one.")
		a.defaults()
		a.Save()
		return
	}

	// Otherwise unmarshal it
	if jsonErr := a.Load(buf); jsonErr != nil {
		zap.S().Warnf("Missing or corrupted config file, creating a new one.")
		a.defaults()
		a.Save()
		return
	}

	if a.migrate() {
		a.Save()
	}
}

// Fill the structure with default values
func (a *AppSettings) defaults() {
	a.Version = MEN_VERSION
	a.SdRoot = DEFAULT_SD_ROOT
	a.TitleRoot = DEFAULT_TITLE_ROOT
	a.CacheFile = DEFAULT_CACHE_FILE
	a.IconFolder = DEFAULT_ICON_FOLDER
	a.Categories = []string{}
	a.AsyncEnrichment = true
	a.MetadataDB = true
}

// Fill settings introduced after the version the file was written with.
// Returns true when something changed.
func (a *AppSettings) migrate() bool {
	if a.Version != "" && version.CompareSimple(a.Version, MEN_VERSION) >= 0 {
		return false
	}

	// icon and cache locations were hardcoded before 1.1.0
	if a.Version == "" || version.CompareSimple(a.Version, "1.1.0") < 0 {
		if a.CacheFile == "" {
			a.CacheFile = DEFAULT_CACHE_FILE
		}
		if a.IconFolder == "" {
			a.IconFolder = DEFAULT_ICON_FOLDER
		}
	}

	// metadata db appeared in 1.2.0, enabled by default
	if a.Version == "" || version.CompareSimple(a.Version, "1.2.0") < 0 {
		a.MetadataDB = true
	}

	if a.SdRoot == "" {
		a.SdRoot = DEFAULT_SD_ROOT
	}
	if a.TitleRoot == "" {
		a.TitleRoot = DEFAULT_TITLE_ROOT
	}

	a.Version = MEN_VERSION
	return true
}

// Resolve a settings path against the base folder
func (a *AppSettings) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.baseFolder, p)
}

// Absolute path of the sd card root
func (a *AppSettings) SdRootPath() string {
	return a.resolve(a.SdRoot)
}

// Absolute path of the title storage root
func (a *AppSettings) TitleRootPath() string {
	return a.resolve(a.TitleRoot)
}

// Absolute path of the game list cache file
func (a *AppSettings) CacheFilePath() string {
	if filepath.IsAbs(a.CacheFile) {
		return a.CacheFile
	}
	return filepath.Join(a.SdRootPath(), a.CacheFile)
}

// Absolute path of the icon cache folder
func (a *AppSettings) IconFolderPath() string {
	if filepath.IsAbs(a.IconFolder) {
		return a.IconFolder
	}
	return filepath.Join(a.SdRootPath(), a.IconFolder)
}

// Absolute path of the vWii launcher icon, empty when not configured
func (a *AppSettings) VWiiIconPath() string {
	return a.resolve(a.VWiiIcon)
}

// Path of the bolt metadata db
func (a *AppSettings) MetadataDBPath() string {
	return filepath.Join(a.baseFolder, METADATA_DB_NAME)
}

// Path of the name overrides file
func (a *AppSettings) NamesPath() string {
	return filepath.Join(a.baseFolder, NAMES_FILENAME)
}

// Save to file (ignore errors)
func (a *AppSettings) Save() {
	// Marshal the struct into JSON bytes
	jsonBytes, jsonErr := json.MarshalIndent(a, "", "  ")
	if jsonErr == nil {
		// Write the file
		if err := os.WriteFile(a.getPath(), jsonBytes, 0644); err != nil {
			zap.S().Warnf("failed to save settings - %v", err)
		}
	}
}

// Return setting as JSON
func (a *AppSettings) ToJSON() string {
	// Marshal the struct into JSON bytes
	jsonBytes, jsonErr := json.MarshalIndent(a, "", "  ")
	if jsonErr != nil {
		return ""
	}

	return string(jsonBytes)
}

// Load a JSON payload
func (a *AppSettings) Load(payload []byte) error {
	jsonErr := json.Unmarshal(payload, a)
	if jsonErr != nil {
		return jsonErr
	}

	return nil
}
