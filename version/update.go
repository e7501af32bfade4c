package version

import (
	"io"
	"net/http"
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
)

const (
	versionURL  = "https://pkgs.keystrand.io/usermeta/latest/version"
	fetchPeriod = 30 * time.Minute
)

// Update periodically fetches the latest released version and notifies a
// listener once the running version falls behind.
type Update struct {
	currentVersion *goversion.Version
	lastAvailable  *goversion.Version
	versionsLock   sync.Mutex

	onUpdateListener func(version string)
	listenerLock     sync.Mutex
}

func NewUpdate() *Update {
	currentVersion, err := goversion.NewVersion(version)
	if err != nil {
		currentVersion, _ = goversion.NewVersion("0.0.0")
	}

	lastAvailable, _ := goversion.NewVersion("0.0.0")

	u := &Update{
		lastAvailable:  lastAvailable,
		currentVersion: currentVersion,
	}

	go u.startFetcher()
	return u
}

// SetOnUpdateListener registers the listener, invoking it right away when a
// newer version is already known.
func (u *Update) SetOnUpdateListener(updateFn func(version string)) {
	u.listenerLock.Lock()
	defer u.listenerLock.Unlock()

	u.onUpdateListener = updateFn
	if u.isUpdateAvailable() {
		u.onUpdateListener(u.lastAvailable.String())
	}
}

func (u *Update) startFetcher() {
	changed := u.fetchVersion()
	if changed {
		u.checkUpdate()
	}

	uptimeTicker := time.NewTicker(fetchPeriod)
	for range uptimeTicker.C {
		changed := u.fetchVersion()
		if changed {
			u.checkUpdate()
		}
	}
}

func (u *Update) fetchVersion() bool {
	resp, err := http.Get(versionURL)
	if err != nil {
		log.Errorf("failed to fetch version info: %s", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("invalid status code: %d", resp.StatusCode)
		return false
	}

	if resp.ContentLength > 100 {
		log.Errorf("too large response: %d", resp.ContentLength)
		return false
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("failed to read content: %s", err)
		return false
	}

	lastAvailable, err := goversion.NewVersion(string(content))
	if err != nil {
		log.Errorf("failed to parse the version string: %s", err)
		return false
	}

	u.versionsLock.Lock()
	defer u.versionsLock.Unlock()

	if u.lastAvailable.Equal(lastAvailable) {
		return false
	}
	u.lastAvailable = lastAvailable

	return true
}

func (u *Update) checkUpdate() {
	if !u.isUpdateAvailable() {
		return
	}

	u.listenerLock.Lock()
	defer u.listenerLock.Unlock()
	if u.onUpdateListener == nil {
		return
	}

	u.onUpdateListener(u.lastAvailable.String())
}

func (u *Update) isUpdateAvailable() bool {
	u.versionsLock.Lock()
	defer u.versionsLock.Unlock()

	return u.lastAvailable.GreaterThan(u.currentVersion)
}
