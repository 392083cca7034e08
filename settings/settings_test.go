package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSettingsCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	s := ReadSettings(dir)

	assert.Equal(t, MEN_VERSION, s.Version)
	assert.True(t, s.AsyncEnrichment)
	assert.True(t, s.MetadataDB)
	assert.Equal(t, filepath.Join(dir, DEFAULT_SD_ROOT, DEFAULT_CACHE_FILE), s.CacheFilePath())
	assert.Equal(t, filepath.Join(dir, DEFAULT_SD_ROOT, DEFAULT_ICON_FOLDER), s.IconFolderPath())
	assert.FileExists(t, filepath.Join(dir, SETTINGS_FILENAME))
}

func TestReadSettingsMigratesOldFile(t *testing.T) {
	dir := t.TempDir()
	old := `{"version": "1.0.0", "sd_root": "/media/sd", "debug": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SETTINGS_FILENAME), []byte(old), 0644))

	s := ReadSettings(dir)

	assert.Equal(t, MEN_VERSION, s.Version)
	assert.True(t, s.Debug)
	assert.True(t, s.MetadataDB)
	assert.Equal(t, DEFAULT_TITLE_ROOT, s.TitleRoot)
	assert.Equal(t, "/media/sd/wiiu/men/men.cache", s.CacheFilePath())

	reread := ReadSettings(dir)
	assert.Equal(t, s.ToJSON(), reread.ToJSON())
}

func TestReadSettingsKeepsCurrentFile(t *testing.T) {
	dir := t.TempDir()
	current := `{"version": "` + MEN_VERSION + `", "sd_root": "card", "metadata_db": false, "cache_file": "/abs/men.cache"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SETTINGS_FILENAME), []byte(current), 0644))

	s := ReadSettings(dir)

	assert.False(t, s.MetadataDB)
	assert.Equal(t, "/abs/men.cache", s.CacheFilePath())
	assert.Equal(t, filepath.Join(dir, "card"), s.SdRootPath())
}

func TestReadSettingsCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SETTINGS_FILENAME), []byte("{not json"), 0644))

	s := ReadSettings(dir)

	assert.Equal(t, DEFAULT_CACHE_FILE, s.CacheFile)
}

func TestLoadNameOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, NAMES_FILENAME)
	content := "0005000010101c00 = Mario Kart 8\n" +
		"not-hex = Ignored\n" +
		"00050000101D7500 = Breath of the Wild\n" +
		"0005000010000000 =\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	overrides, err := LoadNameOverrides(path)
	require.NoError(t, err)

	assert.Equal(t, 2, overrides.Len())
	name, ok := overrides.Get(0x0005000010101c00)
	assert.True(t, ok)
	assert.Equal(t, "Mario Kart 8", name)
	name, ok = overrides.Get(0x00050000101d7500)
	assert.True(t, ok)
	assert.Equal(t, "Breath of the Wild", name)
	_, ok = overrides.Get(0x0005000010000000)
	assert.False(t, ok)
}

func TestLoadNameOverridesMissingFile(t *testing.T) {
	overrides, err := LoadNameOverrides(filepath.Join(t.TempDir(), "missing.properties"))
	require.NoError(t, err)
	assert.Equal(t, 0, overrides.Len())
}

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     bool
	}{
		{name: "newer", manifest: `{"version": "9.0.0"}`, want: true},
		{name: "same", manifest: `{"version": "` + MEN_VERSION + `"}`, want: false},
		{name: "older", manifest: `{"version": "0.1.0"}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.manifest))
			}))
			defer srv.Close()

			orig := MEN_VERSION_URL
			MEN_VERSION_URL = srv.URL
			defer func() { MEN_VERSION_URL = orig }()

			got, _, err := CheckForUpdates(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckForUpdatesServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	orig := MEN_VERSION_URL
	MEN_VERSION_URL = srv.URL
	defer func() { MEN_VERSION_URL = orig }()

	_, _, err := CheckForUpdates(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}
