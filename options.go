package geolayer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akmonengine/geolayer/geo"
	"github.com/akmonengine/geolayer/orient"
	"github.com/akmonengine/geolayer/render"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const DefaultID = "geolayer"

// ErrUnsupportedFormat is returned by LoadOptions for unknown file extensions
var ErrUnsupportedFormat = errors.New("geolayer: unsupported options format")

// Options configures an Overlay. The zero value holds the defaults. It is
// copied at construction; later changes go through Overlay.SetAnchor and
// Overlay.SetUpAxis.
type Options struct {
	// ID under which the layer registers in the host map
	ID string `json:"id" toml:"id" yaml:"id"`

	// Anchor is the origin of the scene's local frame
	Anchor geo.Point `json:"anchor" toml:"anchor" yaml:"anchor"`
	// UpAxis is the axis of the scene content pointing up, Y by default
	UpAxis orient.UpAxis `json:"upAxis" toml:"upAxis" yaml:"upAxis"`

	UseRightHandedSystem bool `json:"useRightHandedSystem" toml:"useRightHandedSystem" yaml:"useRightHandedSystem"`
	AdaptToDeviceRatio   bool `json:"adaptToDeviceRatio" toml:"adaptToDeviceRatio" yaml:"adaptToDeviceRatio"`
	Antialias            bool `json:"antialias" toml:"antialias" yaml:"antialias"`

	// DisableDefaultLighting skips the lights added to every new scene
	DisableDefaultLighting bool `json:"disableDefaultLighting" toml:"disableDefaultLighting" yaml:"disableDefaultLighting"`

	// Workers used by Overlay.LatLngAltitudesToVector3
	Workers int `json:"workers" toml:"workers" yaml:"workers"`

	// Camera is reused on every attach when set; otherwise each new scene
	// gets its own camera
	Camera render.Camera `json:"-" toml:"-" yaml:"-"`
}

// DefaultOptions returns the options every field of which has its default
// value. A resolved zero Options behaves the same.
func DefaultOptions() Options {
	return Options{
		ID:      DefaultID,
		UpAxis:  orient.AxisY,
		Workers: 1,
	}
}

// Resolve fills empty fields with their defaults
func (o *Options) Resolve() {
	if o.ID == "" {
		o.ID = DefaultID
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
}

// LoadOptions reads options from a JSON, TOML or YAML file, chosen by extension.
// Fields absent from the file keep their default values.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("geolayer: read %s: %w", path, err)
	}

	opts := DefaultOptions()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &opts)
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	default:
		return Options{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return Options{}, fmt.Errorf("geolayer: parse %s: %w", path, err)
	}

	opts.Resolve()

	return opts, nil
}
