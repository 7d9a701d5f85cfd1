// Package profile stores the settings used for each serial device in a JSON
// file, so a bring-up can be repeated without the full command line.
package profile

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/patchram"
)

// ErrNotFound is returned by Load for a device without a profile.
var ErrNotFound = errors.New("profile not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fileStore struct {
	filename string
	lock     sync.RWMutex
}

// New returns a store backed by filename. The file is created on the first
// Store.
func New(filename string) patchram.ProfileStore {
	return &fileStore{
		filename: filename,
	}
}

func (fs *fileStore) Store(device string, p patchram.Profile, replace bool) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	profiles, err := fs.loadExisting()
	if err != nil {
		return err
	}

	if _, ok := profiles[device]; ok && !replace {
		return errors.Errorf("profile store already contains %s", device)
	}

	profiles[device] = p
	return fs.storeProfiles(profiles)
}

func (fs *fileStore) Load(device string) (patchram.Profile, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	profiles, err := fs.loadExisting()
	if err != nil {
		return patchram.Profile{}, err
	}

	p, ok := profiles[device]
	if !ok {
		return patchram.Profile{}, errors.Wrap(ErrNotFound, device)
	}
	return p, nil
}

func (fs *fileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	err := os.Remove(fs.filename)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "can't clear profiles")
	}
	return nil
}

func (fs *fileStore) loadExisting() (map[string]patchram.Profile, error) {
	in, err := ioutil.ReadFile(fs.filename)
	if os.IsNotExist(err) {
		return map[string]patchram.Profile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read profiles")
	}

	var profiles map[string]patchram.Profile
	if err := json.Unmarshal(in, &profiles); err != nil {
		return nil, errors.Wrapf(err, "can't parse %s", fs.filename)
	}
	if profiles == nil {
		profiles = map[string]patchram.Profile{}
	}
	return profiles, nil
}

func (fs *fileStore) storeProfiles(profiles map[string]patchram.Profile) error {
	out, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't encode profiles")
	}
	return errors.Wrap(ioutil.WriteFile(fs.filename, out, 0644), "can't write profiles")
}
