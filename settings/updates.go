package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/mcuadros/go-version"
)

var (
	MEN_VERSION_URL = "https://raw.githubusercontent.com/giwty/title-menu/master/men.json"
)

// Check if an update is available
func CheckForUpdates(ctx context.Context) (bool, string, error) {
	var body []byte
	err := retry.Do(
		func() error {
			var fetchErr error
			body, fetchErr = fetchVersionManifest(ctx)
			return fetchErr
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
	)
	if err != nil {
		return false, "", err
	}

	remoteValues := map[string]string{}
	if err := json.Unmarshal(body, &remoteValues); err != nil {
		return false, "", fmt.Errorf("malformed version manifest: %w", err)
	}

	remoteVer := remoteValues["version"]
	if remoteVer == "" {
		return false, "", fmt.Errorf("version manifest has no version")
	}

	return version.CompareSimple(remoteVer, MEN_VERSION) > 0, remoteVer, nil
}

func fetchVersionManifest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MEN_VERSION_URL, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got a non 200 response - %v", res.Status)
	}
	return io.ReadAll(res.Body)
}
