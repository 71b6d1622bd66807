package egl

import (
	"fmt"
	"strings"
	"sync"
)

const (
	maxEGLMajor = 1
	maxEGLMinor = 4
)

// Display is the single EGL display. Its host-derived state is filled by
// the first successful Initialize and survives Terminate.
type Display struct {
	reg *Registry

	mu              sync.Mutex
	initialized     bool
	fetched         bool
	rendererVersion int
	major, minor    int
	configs         *ConfigTable
	attribIndex     map[int32]int

	versionString   string
	vendorString    string
	extensionString string
	stringsBuilt    map[int32]bool
}

// hostInfo is what the first Initialize reads from the host.
type hostInfo struct {
	renderer     int
	major, minor int
	configs      *ConfigTable
	attribIndex  map[int32]int
}

// fetchHostInfo queries the host for the version and config table. It
// touches no display state so it runs without the display lock.
func fetchHostInfo(h Host) (*hostInfo, error) {
	renderer, err := h.RendererVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to query renderer version: %w", err)
	}
	major, minor, err := h.EGLVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to query EGL version: %w", err)
	}
	if major > maxEGLMajor {
		major, minor = maxEGLMajor, maxEGLMinor
	} else if major == maxEGLMajor && minor > maxEGLMinor {
		minor = maxEGLMinor
	}
	table, err := h.Configs()
	if err != nil {
		return nil, fmt.Errorf("failed to query configs: %w", err)
	}
	if table == nil || len(table.Values) == 0 {
		return nil, fmt.Errorf("host returned no configs")
	}
	for i, row := range table.Values {
		if len(row) != len(table.Attribs) {
			return nil, fmt.Errorf("config %d has %d values for %d attributes", i, len(row), len(table.Attribs))
		}
	}

	index := make(map[int32]int, len(table.Attribs))
	for i, a := range table.Attribs {
		index[a] = i
	}
	return &hostInfo{
		renderer:    renderer,
		major:       major,
		minor:       minor,
		configs:     table,
		attribIndex: index,
	}, nil
}

// store installs info unless an earlier fetch already did. d.mu is held.
func (d *Display) store(info *hostInfo) bool {
	if d.fetched {
		return false
	}
	d.rendererVersion = info.renderer
	d.major, d.minor = info.major, info.minor
	d.configs = info.configs
	d.attribIndex = info.attribIndex
	d.stringsBuilt = make(map[int32]bool)
	d.fetched = true
	return true
}

// Version returns the EGL version reported by Initialize.
func (d *Display) Version() (major, minor int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.major, d.minor
}

// RendererVersion returns the host renderer version.
func (d *Display) RendererVersion() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rendererVersion
}

func (d *Display) isInitialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// NumConfigs returns the size of the config table, 0 before initialization.
func (d *Display) NumConfigs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.configs == nil {
		return 0
	}
	return len(d.configs.Values)
}

func (d *Display) validConfig(cfg Config) bool {
	n := d.NumConfigs()
	return int(cfg) >= 0 && int(cfg) < n
}

// ConfigAttrib returns the value of attr for cfg.
func (d *Display) ConfigAttrib(cfg Config, attr int32) (int32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.configs == nil || int(cfg) < 0 || int(cfg) >= len(d.configs.Values) {
		return 0, false
	}
	i, ok := d.attribIndex[attr]
	if !ok {
		return 0, false
	}
	return d.configs.Values[cfg][i], true
}

// ConfigPixelFormat derives the color buffer format of cfg from its
// channel sizes.
func (d *Display) ConfigPixelFormat(cfg Config) (PixelFormat, bool) {
	var sizes [4]int32
	for i, attr := range []int32{RedSize, GreenSize, BlueSize, AlphaSize} {
		v, ok := d.ConfigAttrib(cfg, attr)
		if !ok {
			return FormatUnknown, false
		}
		sizes[i] = v
	}
	f := PixelFormatFor(sizes[0], sizes[1], sizes[2], sizes[3])
	return f, f != FormatUnknown
}

// PixelFormatFor maps red, green, blue and alpha channel sizes to a color
// buffer format.
func PixelFormatFor(r, g, b, a int32) PixelFormat {
	switch [4]int32{r, g, b, a} {
	case [4]int32{8, 8, 8, 8}:
		return FormatRGBA
	case [4]int32{8, 8, 8, 0}:
		return FormatRGB
	case [4]int32{5, 6, 5, 0}:
		return FormatRGB565
	case [4]int32{5, 5, 5, 1}:
		return FormatRGB5A1
	case [4]int32{4, 4, 4, 4}:
		return FormatRGBA4
	}
	return FormatUnknown
}

// queryString builds the requested string on first use. Host strings are
// fetched with the display unlocked.
func (d *Display) queryString(h Host, name int32) (string, bool) {
	switch name {
	case ClientAPIs:
		return "OpenGL_ES", true
	case Version:
		d.mu.Lock()
		defer d.mu.Unlock()
		if !d.stringsBuilt[Version] {
			d.versionString = fmt.Sprintf("%d.%d", d.major, d.minor)
			d.stringsBuilt[Version] = true
		}
		return d.versionString, true
	case Vendor, Extensions:
	default:
		return "", false
	}

	d.mu.Lock()
	if d.stringsBuilt[name] {
		s := d.builtString(name)
		d.mu.Unlock()
		return s, true
	}
	d.mu.Unlock()

	hostValue, err := h.QueryEGLString(name)
	if err != nil {
		d.reg.logger.Error("failed to query host string", "name", fmt.Sprintf("0x%04x", name), "error", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.stringsBuilt[name] {
		if name == Vendor {
			if hostValue != "" {
				d.vendorString = fmt.Sprintf("%s Host: %s", d.reg.vendor, hostValue)
			} else {
				d.vendorString = d.reg.vendor
			}
		} else {
			d.extensionString = filterExtensions(hostValue, d.reg.extensions)
		}
		d.stringsBuilt[name] = true
	}
	return d.builtString(name), true
}

func (d *Display) builtString(name int32) string {
	if name == Vendor {
		return d.vendorString
	}
	return d.extensionString
}

// filterExtensions keeps the host extensions present in supported, in host
// order.
func filterExtensions(host string, supported []string) string {
	allowed := make(map[string]bool, len(supported))
	for _, ext := range supported {
		allowed[ext] = true
	}
	var kept []string
	for _, ext := range strings.Fields(host) {
		if allowed[ext] {
			kept = append(kept, ext)
		}
	}
	return strings.Join(kept, " ")
}

// checkDisplay validates dpy and, when init is set, that it is
// initialized.
func (t *Thread) checkDisplay(dpy *Display, init bool) bool {
	if !t.reg.validDisplay(dpy) {
		t.setError(BadDisplay)
		return false
	}
	if init && !dpy.isInitialized() {
		t.setError(NotInitialized)
		return false
	}
	return true
}

func (t *Thread) checkConfig(dpy *Display, cfg Config) bool {
	if !dpy.validConfig(cfg) {
		t.setError(BadConfig)
		return false
	}
	return true
}

// Initialize initializes dpy, fetching the host configuration on the first
// call. Later calls report the same version.
func (t *Thread) Initialize(dpy *Display) (major, minor int, ok bool) {
	if !t.checkDisplay(dpy, false) {
		return 0, 0, false
	}
	if !t.initialize(dpy) {
		t.setError(NotInitialized)
		return 0, 0, false
	}
	major, minor = dpy.Version()
	return major, minor, true
}

func (t *Thread) initialize(dpy *Display) bool {
	dpy.mu.Lock()
	initialized, fetched := dpy.initialized, dpy.fetched
	dpy.mu.Unlock()
	if initialized {
		return true
	}
	if !fetched {
		h, ok := t.host()
		if !ok {
			return false
		}
		info, err := fetchHostInfo(h)
		if err != nil {
			t.reg.logger.Error("display initialization failed", "error", err)
			return false
		}
		dpy.mu.Lock()
		stored := dpy.store(info)
		dpy.mu.Unlock()
		if stored {
			t.reg.logger.Info("display initialized",
				"egl_version", fmt.Sprintf("%d.%d", info.major, info.minor),
				"renderer_version", info.renderer,
				"configs", len(info.configs.Values),
			)
		}
	}
	dpy.mu.Lock()
	dpy.initialized = true
	dpy.mu.Unlock()
	return true
}

// Terminate marks dpy uninitialized. Contexts and surfaces stay alive until
// destroyed explicitly.
func (t *Thread) Terminate(dpy *Display) bool {
	if !t.checkDisplay(dpy, true) {
		return false
	}
	dpy.mu.Lock()
	dpy.initialized = false
	dpy.mu.Unlock()
	return true
}

// GetConfigs copies config ordinals into configs and returns how many were
// written. With a nil slice it returns the number of configs.
func (t *Thread) GetConfigs(dpy *Display, configs []Config) (int, bool) {
	if !t.checkDisplay(dpy, true) {
		return 0, false
	}
	n := dpy.NumConfigs()
	if configs == nil {
		return n, true
	}
	i := 0
	for ; i < n && i < len(configs); i++ {
		configs[i] = Config(i)
	}
	return i, true
}

// ChooseConfig performs no selection and reports zero matching configs.
func (t *Thread) ChooseConfig(dpy *Display, attribs []int32, configs []Config) (int, bool) {
	if !t.checkDisplay(dpy, true) {
		return 0, false
	}
	return 0, true
}

// GetConfigAttrib returns the value of attr for cfg.
func (t *Thread) GetConfigAttrib(dpy *Display, cfg Config, attr int32) (int32, bool) {
	if !t.checkDisplay(dpy, true) || !t.checkConfig(dpy, cfg) {
		return 0, false
	}
	v, ok := dpy.ConfigAttrib(cfg, attr)
	if !ok {
		t.setError(BadAttribute)
		return 0, false
	}
	return v, true
}

// QueryString returns one of the ClientAPIs, Version, Vendor or Extensions
// strings.
func (t *Thread) QueryString(dpy *Display, name int32) (string, bool) {
	if !t.checkDisplay(dpy, true) {
		return "", false
	}
	var h Host
	if name == Vendor || name == Extensions {
		conn, ok := t.host()
		if !ok {
			t.setError(BadAlloc)
			return "", false
		}
		h = conn
	}
	s, ok := dpy.queryString(h, name)
	if !ok {
		t.reg.logger.Warn("unknown string name", "name", fmt.Sprintf("0x%04x", name))
		t.setError(BadParameter)
		return "", false
	}
	return s, true
}
