package nbody

import (
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/spf13/viper"
)

// Config replaces the two items of process-wide call-scope state the
// source relies on (the latched central body and the relativity switch)
// with an explicit value threaded into every entry point, per §9's design
// note. Concurrent calls with different Config values are safe; nothing
// here is shared mutable state.
type Config struct {
	// CentralBody is the primary whose gravitational parameter drives the
	// Kepler part of the force model. Defaults to Sun.
	CentralBody BodyID
	// Relativity enables the first-order relativistic correction term of §4.1.
	// Only has an effect when CentralBody is Sun; requesting it otherwise is
	// a DomainError (§4.1, §7).
	Relativity bool
	// Logger receives structured progress/diagnostic records from every
	// driver. A nil Logger is replaced with log.NewNopLogger().
	Logger log.Logger
	// MaxKeplerSplitDepth bounds keplerStepDepth's recursive step-splitting
	// (§4.6). Zero means "use maxKeplerSplitDepth".
	MaxKeplerSplitDepth int
	// DefaultStep is the nominal step BulirschFullJPL and
	// GaussRadau15FullJPL fall back to when opts.Step is zero.
	DefaultStep float64
	// DefaultTolerance is the ll GaussRadau15FullJPL falls back to when the
	// caller passes ll=0.
	DefaultTolerance float64
	// EphemerisPath is the default JPL binary kernel path a caller's own
	// EphemerisPort construction may consult; unused by this package
	// directly, since EphemerisPort implementations live outside it.
	EphemerisPath string
}

// DefaultConfig reproduces the source's default behaviour: relativity on,
// Sun-centred, with a logger that discards everything, and the built-in
// numerical defaults of defaultCoreConfig().
func DefaultConfig() Config {
	core := defaultCoreConfig()
	return Config{
		CentralBody:         Sun,
		Relativity:          true,
		Logger:              log.NewNopLogger(),
		MaxKeplerSplitDepth: core.MaxKeplerSplitDepth,
		DefaultStep:         core.DefaultStep,
		DefaultTolerance:    core.DefaultTolerance,
		EphemerisPath:       core.EphemerisPath,
	}
}

// LoadConfig is DefaultConfig with its numerical defaults overlaid by
// LoadCoreConfig's conf.toml lookup, for callers that want the
// NBODY_CONFIG-driven tolerances and ephemeris path instead of the
// built-in constants.
func LoadConfig() (Config, error) {
	core, err := LoadCoreConfig()
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	cfg.MaxKeplerSplitDepth = core.MaxKeplerSplitDepth
	cfg.DefaultStep = core.DefaultStep
	cfg.DefaultTolerance = core.DefaultTolerance
	cfg.EphemerisPath = core.EphemerisPath
	return cfg, nil
}

func (c Config) logger() log.Logger {
	if c.Logger == nil {
		return log.NewNopLogger()
	}
	return c.Logger
}

// coreConfig holds file-configurable numerical defaults, loaded once via
// viper the way the teacher's _smdconfig/smdConfig() loads SPICE/VSOP87
// settings from conf.toml. Unlike the teacher, an unset NBODY_CONFIG is
// not fatal: the library falls back to the defaults below so it works out
// of the box. When NBODY_CONFIG is set, a conf.toml that is missing or
// malformed there is an error.
type coreConfig struct {
	DefaultTolerance    float64 // ll for GaussRadau15FullJPL when the caller doesn't specify one
	DefaultStep         float64 // h for BulirschFullJPL when the caller doesn't specify one
	EphemerisPath       string  // default JPL binary kernel path for the jplfile adapter
	MaxKeplerSplitDepth int
}

func defaultCoreConfig() coreConfig {
	return coreConfig{
		DefaultTolerance:    12,
		DefaultStep:         1.0,
		EphemerisPath:       "",
		MaxKeplerSplitDepth: 30,
	}
}

// LoadCoreConfig reads conf.toml from the directory named by the
// NBODY_CONFIG environment variable, overlaying it onto defaultCoreConfig().
// If the environment variable is unset, the defaults are returned as-is —
// the one deliberate divergence from the teacher's smdConfig(), which
// panics without SMD_CONFIG; a numerical library should not require an
// operator to configure it just to get correct physics defaults.
func LoadCoreConfig() (coreConfig, error) {
	cfg := defaultCoreConfig()
	confPath := os.Getenv("NBODY_CONFIG")
	if confPath == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg, wrapError(DomainError, "config", confPath+"/conf.toml not found or malformed", err)
	}
	if v.IsSet("integration.default_tolerance") {
		cfg.DefaultTolerance = v.GetFloat64("integration.default_tolerance")
	}
	if v.IsSet("integration.default_step") {
		cfg.DefaultStep = v.GetFloat64("integration.default_step")
	}
	if v.IsSet("ephemeris.path") {
		cfg.EphemerisPath = v.GetString("ephemeris.path")
	}
	if v.IsSet("kepler.max_split_depth") {
		cfg.MaxKeplerSplitDepth = v.GetInt("kepler.max_split_depth")
	}
	return cfg, nil
}

// bodyFromString parses a catalogue body name case-insensitively, mirroring
// the teacher's CelestialObjectFromString.
func bodyFromString(name string) (BodyID, error) {
	switch strings.ToLower(name) {
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	case "moon":
		return Moon, nil
	case "sun":
		return Sun, nil
	default:
		return 0, newError(DomainError, "config", "undefined body '"+name+"'")
	}
}
