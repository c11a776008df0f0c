// FILE: lixenwraith/hiconf/discovery.go
package hiconf

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSettingsFile    = ".hiconfrc"
	DefaultManifestFile    = "project.toml"
	DefaultManifestSection = "tool.hiconf"
)

// DefaultDirs is used when neither the caller, a settings file, nor a manifest names directories.
var DefaultDirs = []string{"$ROOT/configs", "$CWD/configs", "configs"}

// DirSource records which step of the resolution order produced the directory list
type DirSource string

const (
	DirSourceExplicit DirSource = "explicit"
	DirSourceSettings DirSource = "settings"
	DirSourceManifest DirSource = "manifest"
	DirSourceDefault  DirSource = "default"
)

// DirOptions configures directory resolution
type DirOptions struct {
	// Explicit directories; when non-empty no files are consulted
	Explicit []string

	// WorkDir substitutes $CWD and starts the ancestor search (default: os.Getwd)
	WorkDir string

	// ScriptDir anchors relative entries without variables (default: executable's directory)
	ScriptDir string

	// Settings file name searched in WorkDir and its ancestors
	SettingsFile string

	// Manifest file name and the dotted section holding the directory list
	ManifestFile    string
	ManifestSection string

	Logger *slog.Logger
}

// Dirs is the outcome of directory resolution, lowest precedence first.
type Dirs struct {
	Paths    []string
	Source   DirSource
	Root     string
	Warnings []error
}

// dirSettings is the record shared by the settings file and the manifest section
type dirSettings struct {
	ConfigDirs []string `mapstructure:"config_dirs"`
}

// ResolveDirs computes the ordered list of existing configuration directories.
// Malformed settings or manifest content falls through to the next source and is
// reported in Warnings; an empty result is not an error.
func ResolveDirs(opts DirOptions) Dirs {
	opts = opts.withDefaults()
	logger := opts.Logger

	root := findRoot(opts.WorkDir, opts.SettingsFile, opts.ManifestFile)
	result := Dirs{Root: root}

	var entries []string
	switch {
	case len(opts.Explicit) > 0:
		entries, result.Source = opts.Explicit, DirSourceExplicit

	default:
		if dirs, err := loadSettingsDirs(opts.WorkDir, opts.SettingsFile); err != nil {
			result.Warnings = append(result.Warnings, err)
			logger.Warn("ignoring config settings file", "error", err)
		} else if len(dirs) > 0 {
			entries, result.Source = dirs, DirSourceSettings
		}

		if entries == nil {
			if dirs, err := loadManifestDirs(opts.WorkDir, opts.ManifestFile, opts.ManifestSection); err != nil {
				result.Warnings = append(result.Warnings, err)
				logger.Warn("ignoring project manifest section", "error", err)
			} else if len(dirs) > 0 {
				entries, result.Source = dirs, DirSourceManifest
			}
		}

		if entries == nil {
			entries, result.Source = DefaultDirs, DirSourceDefault
		}
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		path := resolveEntry(entry, opts.WorkDir, root, opts.ScriptDir)
		if seen[path] {
			continue
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			logger.Debug("config directory not found", "entry", entry, "path", path)
			continue
		}
		seen[path] = true
		result.Paths = append(result.Paths, path)
	}

	logger.Debug("resolved config directories", "source", result.Source, "dirs", result.Paths)
	return result
}

func (o DirOptions) withDefaults() DirOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.WorkDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			o.WorkDir = cwd
		}
	}
	if abs, err := filepath.Abs(o.WorkDir); err == nil {
		o.WorkDir = abs
	}
	if o.ScriptDir == "" {
		o.ScriptDir = executableDir(o.WorkDir)
	}
	if o.SettingsFile == "" {
		o.SettingsFile = DefaultSettingsFile
	}
	if o.ManifestFile == "" {
		o.ManifestFile = DefaultManifestFile
	}
	if o.ManifestSection == "" {
		o.ManifestSection = DefaultManifestSection
	}
	return o
}

// executableDir returns the running binary's directory, or fallback
func executableDir(fallback string) string {
	exe, err := os.Executable()
	if err != nil {
		return fallback
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// resolveEntry substitutes $CWD/$ROOT and anchors relative paths
func resolveEntry(entry, cwd, root, scriptDir string) string {
	hasVar := strings.Contains(entry, "$CWD") || strings.Contains(entry, "${CWD}") ||
		strings.Contains(entry, "$ROOT") || strings.Contains(entry, "${ROOT}")

	path := strings.NewReplacer(
		"${CWD}", cwd,
		"$CWD", cwd,
		"${ROOT}", root,
		"$ROOT", root,
	).Replace(entry)

	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
			hasVar = true
		}
	}

	if !filepath.IsAbs(path) {
		base := scriptDir
		if hasVar {
			base = cwd
		}
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// findUpward returns the first path named name in dir or its ancestors
func findUpward(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// findRoot returns the nearest ancestor holding the settings file or the manifest
func findRoot(workDir, settingsFile, manifestFile string) string {
	for dir := workDir; ; {
		for _, name := range []string{settingsFile, manifestFile} {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return workDir
		}
		dir = parent
	}
}

// loadSettingsDirs reads config_dirs from the nearest settings file
func loadSettingsDirs(workDir, name string) ([]string, error) {
	path, found := findUpward(workDir, name)
	if !found {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read settings file '%s': %w", ErrDirectoryResolution, path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	raw := make(map[string]any)
	switch format {
	case "toml":
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	case "json", "yaml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = fmt.Errorf("unable to determine format")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse settings file '%s': %w", ErrDirectoryResolution, path, err)
	}

	dirs, err := decodeDirSettings(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: settings file '%s': %w", ErrDirectoryResolution, path, err)
	}
	return dirs, nil
}

// loadManifestDirs reads config_dirs from a dotted section of the nearest manifest
func loadManifestDirs(workDir, name, section string) ([]string, error) {
	path, found := findUpward(workDir, name)
	if !found {
		return nil, nil
	}

	raw := make(map[string]any)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest '%s': %w", ErrDirectoryResolution, path, err)
	}

	sectionData := navigateToPath(raw, section)
	if sectionData == nil {
		return nil, nil
	}
	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: manifest '%s': section [%s] is not a table", ErrDirectoryResolution, path, section)
	}

	dirs, err := decodeDirSettings(sectionMap)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest '%s' section [%s]: %w", ErrDirectoryResolution, path, section, err)
	}
	return dirs, nil
}

// decodeDirSettings accepts config_dirs as a string or a list of strings
func decodeDirSettings(raw map[string]any) ([]string, error) {
	var s dirSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &s,
		DecodeHook: mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return s.ConfigDirs, nil
}
