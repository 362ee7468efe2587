package vkframe

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Property keys understood by Usage.Config.
const (
	PropTitle          = "Title"
	PropWidth          = "Width"
	PropHeight         = "Height"
	PropValidation     = "Validation"
	PropVertexShader   = "VertexShader"
	PropFragmentShader = "FragmentShader"
	PropLogFile        = "LogFile"
)

// Usage is a named property bag with one map per value type. Usages may be
// chained through Linked.
type Usage struct {
	Name        string
	StringProps map[string]string
	IntProps    map[string]int
	BoolProps   map[string]bool
	FloatProps  map[string]float32
	Linked      *Usage
}

func NewUsage(name string, defaultSize uint) *Usage {
	return &Usage{
		Name:        name,
		StringProps: make(map[string]string, defaultSize),
		IntProps:    make(map[string]int, defaultSize),
		BoolProps:   make(map[string]bool, defaultSize),
		FloatProps:  make(map[string]float32, defaultSize),
	}
}

func (u *Usage) HasNext() bool {
	return u.Linked != nil
}

func (u *Usage) GetLinkedUsage() (*Usage, error) {
	if !u.HasNext() {
		return nil, errors.Errorf("properties %s have no linked usage", u.Name)
	}
	return u.Linked, nil
}

// UsageFromEnv reads <prefix>_TITLE, _WIDTH, _HEIGHT, _VALIDATION,
// _VERTEX_SHADER, _FRAGMENT_SHADER and _LOG_FILE. Unset variables are left
// out of the usage so defaults apply.
func UsageFromEnv(prefix string) (*Usage, error) {
	u := NewUsage(prefix, 8)
	env := func(key string) (string, bool) {
		return os.LookupEnv(prefix + "_" + key)
	}

	for key, prop := range map[string]string{
		"TITLE":           PropTitle,
		"VERTEX_SHADER":   PropVertexShader,
		"FRAGMENT_SHADER": PropFragmentShader,
		"LOG_FILE":        PropLogFile,
	} {
		if v, ok := env(key); ok {
			u.StringProps[prop] = v
		}
	}
	for key, prop := range map[string]string{"WIDTH": PropWidth, "HEIGHT": PropHeight} {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.Wrapf(err, "%s_%s", prefix, key)
			}
			u.IntProps[prop] = n
		}
	}
	if v, ok := env("VALIDATION"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.Wrapf(err, "%s_VALIDATION", prefix)
		}
		u.BoolProps[PropValidation] = b
	}
	return u, nil
}

// Config is the runtime configuration handed to the window and the device.
type Config struct {
	Title            string
	Width            int
	Height           int
	EnableValidation bool
	VertexShader     string
	FragmentShader   string
	LogFile          string
}

func DefaultConfig(title string) Config {
	return Config{
		Title:            title,
		Width:            800,
		Height:           600,
		EnableValidation: true,
		VertexShader:     "shaders/simple_shader.vert.spv",
		FragmentShader:   "shaders/simple_shader.frag.spv",
	}
}

// Config overlays the usage properties onto defaults.
func (u *Usage) Config(defaults Config) (Config, error) {
	cfg := defaults
	if v, ok := u.StringProps[PropTitle]; ok {
		cfg.Title = v
	}
	if v, ok := u.StringProps[PropVertexShader]; ok {
		cfg.VertexShader = v
	}
	if v, ok := u.StringProps[PropFragmentShader]; ok {
		cfg.FragmentShader = v
	}
	if v, ok := u.StringProps[PropLogFile]; ok {
		cfg.LogFile = v
	}
	if v, ok := u.IntProps[PropWidth]; ok {
		cfg.Width = v
	}
	if v, ok := u.IntProps[PropHeight]; ok {
		cfg.Height = v
	}
	if v, ok := u.BoolProps[PropValidation]; ok {
		cfg.EnableValidation = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("shader paths must be set")
	}
	return nil
}
