package camera

import "sort"

// Preset names for common capture resolutions
const (
	PresetDefault = "default"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetVGA:     withSize(640, 480),
		Preset720p:    withSize(1280, 720),
		Preset1080p:   withSize(1920, 1080),
	}
}

// PresetNames returns the sorted list of available preset names.
func PresetNames() []string {
	names := make([]string, 0, 4)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

func withSize(w, h int) Config {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return cfg
}
