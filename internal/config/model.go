package config

const (
	BackendAuto    = "auto"
	BackendWayland = "wayland"
	BackendX11     = "x11"

	DisplayIcon  = "icon"
	DisplayTitle = "title"
	DisplayBoth  = "both"
)

var defaultConfig = Config{
	Backend: BackendAuto,
	Taskbar: Taskbar{
		Display:        DisplayIcon,
		MaxTitleLength: 30,
		IconSize:       32,
	},
	Workspaces: Workspaces{
		Format: "{name}",
		Scroll: true,
	},
}

// Default returns the configuration written on first run.
func Default() Config {
	return defaultConfig
}

type Config struct {
	Backend    string     `json:"backend" yaml:"backend"` // [auto, wayland, x11]
	Taskbar    Taskbar    `json:"taskbar" yaml:"taskbar"`
	Workspaces Workspaces `json:"workspaces" yaml:"workspaces"`
}

type Taskbar struct {
	Display        string `json:"display" yaml:"display"` // [icon, title, both]
	MaxTitleLength int    `json:"max_title_length" yaml:"max_title_length"`
	IconSize       int    `json:"icon_size" yaml:"icon_size"`
}

type Workspaces struct {
	Format         string `json:"format" yaml:"format"`
	ShowHidden     bool   `json:"show_hidden" yaml:"show_hidden"`
	Scroll         bool   `json:"scroll" yaml:"scroll"`
	SyncCommand    string `json:"sync_command" yaml:"sync_command"`
	SyncOnlyActive bool   `json:"sync_only_active" yaml:"sync_only_active"`
}

// Normalize replaces missing or invalid values with defaults.
func (c Config) Normalize() Config {
	switch c.Backend {
	case BackendAuto, BackendWayland, BackendX11:
	default:
		c.Backend = defaultConfig.Backend
	}

	switch c.Taskbar.Display {
	case DisplayIcon, DisplayTitle, DisplayBoth:
	default:
		c.Taskbar.Display = defaultConfig.Taskbar.Display
	}
	if c.Taskbar.MaxTitleLength <= 0 {
		c.Taskbar.MaxTitleLength = defaultConfig.Taskbar.MaxTitleLength
	}
	if c.Taskbar.IconSize <= 0 {
		c.Taskbar.IconSize = defaultConfig.Taskbar.IconSize
	}

	if c.Workspaces.Format == "" {
		c.Workspaces.Format = defaultConfig.Workspaces.Format
	}

	return c
}

// ResolveBackend turns auto into a concrete backend using the session
// environment. It returns an empty string when no display is available.
func ResolveBackend(backend string, getenv func(string) string) string {
	if backend != BackendAuto {
		return backend
	}
	switch {
	case getenv("WAYLAND_DISPLAY") != "":
		return BackendWayland
	case getenv("DISPLAY") != "":
		return BackendX11
	default:
		return ""
	}
}
