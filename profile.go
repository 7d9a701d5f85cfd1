package patchram

// Profile is a saved set of settings for one serial device.
type Profile struct {
	Settings []Setting `json:"settings"`
}

// ProfileStore persists profiles keyed by serial device.
type ProfileStore interface {
	Store(device string, p Profile, replace bool) error
	Load(device string) (Profile, error)
	Clear() error
}
