// pkg/config/config.go - configuration settings for the Office deployment tool.

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
	"gopkg.in/yaml.v3"
)

const ConfigPath = `C:\ProgramData\OfficeDeploy\Config.yaml`

// CSP OMA-URI registry path for enterprise policy configuration
const CSPRegistryPath = `SOFTWARE\OfficeDeploy\Config`

// Configuration holds the configurable options for a deployment run in YAML format.
type Configuration struct {
	SetupPath        string   `yaml:"SetupPath"`        // Office Deployment Tool setup.exe
	SupportFilesPath string   `yaml:"SupportFilesPath"` // directory holding the OffScrub removal scripts
	ConfigXMLPath    string   `yaml:"ConfigXMLPath"`    // generated configuration document location
	LogPath          string   `yaml:"LogPath"`
	Channel          string   `yaml:"Channel"`       // target update channel for the Add directive
	ClientEdition    string   `yaml:"ClientEdition"` // "32" or "64"
	Languages        []string `yaml:"Languages"`
	MinimumBuild     string   `yaml:"MinimumBuild"` // oldest Click-to-Run build considered current
	CloseApps        []string `yaml:"CloseApps"`    // process names closed before install
	DeferLimit       int      `yaml:"DeferLimit"`
	CheckDiskSpace   bool     `yaml:"CheckDiskSpace"`
	RequiredSpaceMB  int      `yaml:"RequiredSpaceMB"`
	LogLevel         string   `yaml:"LogLevel"`
	Debug            bool     `yaml:"Debug"`
	Verbose          bool     `yaml:"Verbose"`
}

// LoadConfig loads the configuration from a YAML file.
// If the YAML file doesn't exist, it falls back to CSP OMA-URI registry settings.
func LoadConfig() (*Configuration, error) {
	if _, err := os.Stat(ConfigPath); os.IsNotExist(err) {
		log.Printf("Configuration file does not exist: %s", ConfigPath)
		log.Printf("Attempting to load configuration from CSP OMA-URI registry settings...")

		config, cspErr := LoadConfigFromCSP()
		if cspErr == nil {
			log.Printf("Successfully loaded configuration from CSP OMA-URI registry settings")
			return config, nil
		}

		log.Printf("Failed to load from CSP registry: %v", cspErr)
		log.Printf("Continuing with built-in defaults")
		config = GetDefaultConfig()
		if err := ensureDirectories(config); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(ConfigPath)
	if err != nil {
		log.Printf("Failed to read configuration file: %v", err)
		return nil, err
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse configuration file: %v", err)
		return nil, err
	}

	applyDefaults(config)
	if err := ensureDirectories(config); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the current configuration to a YAML file.
func SaveConfig(config *Configuration) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		log.Printf("Failed to serialize configuration: %v", err)
		return err
	}

	err = os.MkdirAll(filepath.Dir(ConfigPath), 0755)
	if err != nil {
		log.Printf("Failed to create configuration directory: %v", err)
		return err
	}

	err = os.WriteFile(ConfigPath, data, 0644)
	if err != nil {
		log.Printf("Failed to write configuration file: %v", err)
		return err
	}

	return nil
}

// GetDefaultConfig provides default configuration values in YAML format.
func GetDefaultConfig() *Configuration {
	// Use ProgramW6432 environment variable to force 64-bit Program Files path
	programFiles := os.Getenv("ProgramW6432")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	return &Configuration{
		SetupPath:        filepath.Join(programFiles, "OfficeDeploy", "setup.exe"),
		SupportFilesPath: filepath.Join(programFiles, "OfficeDeploy", "SupportFiles"),
		ConfigXMLPath:    `C:\Windows\Temp\OfficeDeploy-Configuration.xml`,
		LogPath:          `C:\ProgramData\OfficeDeploy\logs`,
		Channel:          "Current",
		ClientEdition:    "64",
		Languages:        []string{"en-us"},
		MinimumBuild:     "16.0.10000.0000",
		CloseApps: []string{
			"winword", "excel", "powerpnt", "outlook", "onenote",
			"msaccess", "mspub", "visio", "winproj", "lync", "groove",
		},
		DeferLimit:      3,
		CheckDiskSpace:  true,
		RequiredSpaceMB: 6144,
		LogLevel:        "INFO",
		Debug:           false,
		Verbose:         false,
	}
}

// applyDefaults fills any fields left empty by the YAML document.
func applyDefaults(config *Configuration) {
	defaults := GetDefaultConfig()
	if config.SetupPath == "" {
		config.SetupPath = defaults.SetupPath
	}
	if config.SupportFilesPath == "" {
		config.SupportFilesPath = defaults.SupportFilesPath
	}
	if config.ConfigXMLPath == "" {
		config.ConfigXMLPath = defaults.ConfigXMLPath
	}
	if config.LogPath == "" {
		config.LogPath = defaults.LogPath
	}
	if config.Channel == "" {
		config.Channel = defaults.Channel
	}
	if config.ClientEdition == "" {
		config.ClientEdition = defaults.ClientEdition
	}
	if len(config.Languages) == 0 {
		config.Languages = defaults.Languages
	}
	if len(config.CloseApps) == 0 {
		config.CloseApps = defaults.CloseApps
	}
	if config.RequiredSpaceMB == 0 {
		config.RequiredSpaceMB = defaults.RequiredSpaceMB
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
}

// ensureDirectories creates the directories a run writes into.
func ensureDirectories(config *Configuration) error {
	for _, path := range []string{config.LogPath, filepath.Dir(config.ConfigXMLPath)} {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %v", path, err)
		}
	}
	return nil
}

// LoadConfigFromCSP loads configuration from Windows CSP OMA-URI registry settings.
// This serves as a fallback when the Config.yaml file doesn't exist.
func LoadConfigFromCSP() (*Configuration, error) {
	// Start with default configuration
	config := GetDefaultConfig()

	err := loadCSPFromRegistryPath(CSPRegistryPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from CSP registry path: %v", err)
	}

	log.Printf("Loaded CSP configuration from registry path: %s", CSPRegistryPath)

	if err := ensureDirectories(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadCSPFromRegistryPath loads configuration values from a specific registry path.
func loadCSPFromRegistryPath(registryPath string, config *Configuration) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, registryPath, registry.READ)
	if err != nil {
		return fmt.Errorf("failed to open CSP registry key %s: %v", registryPath, err)
	}
	defer key.Close()

	// Load string configuration values
	loadStringFromRegistry(key, "SetupPath", &config.SetupPath)
	loadStringFromRegistry(key, "SupportFilesPath", &config.SupportFilesPath)
	loadStringFromRegistry(key, "ConfigXMLPath", &config.ConfigXMLPath)
	loadStringFromRegistry(key, "LogPath", &config.LogPath)
	loadStringFromRegistry(key, "Channel", &config.Channel)
	loadStringFromRegistry(key, "ClientEdition", &config.ClientEdition)
	loadStringFromRegistry(key, "MinimumBuild", &config.MinimumBuild)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)

	// Load integer configuration values
	loadIntFromRegistry(key, "DeferLimit", &config.DeferLimit)
	loadIntFromRegistry(key, "RequiredSpaceMB", &config.RequiredSpaceMB)

	// Load boolean configuration values
	loadBoolFromRegistry(key, "CheckDiskSpace", &config.CheckDiskSpace)
	loadBoolFromRegistry(key, "Debug", &config.Debug)
	loadBoolFromRegistry(key, "Verbose", &config.Verbose)

	// Load array configuration values
	loadStringArrayFromRegistry(key, "Languages", &config.Languages)
	loadStringArrayFromRegistry(key, "CloseApps", &config.CloseApps)

	return nil
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("CSP: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts various formats: "true"/"false", "1"/"0", DWORD 1/0
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	// Try string value first
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %t", valueName, parsed)
			return
		}
	}

	// Try DWORD value
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
		log.Printf("CSP: Loaded %s = %t", valueName, val != 0)
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	// Try string value first
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %d", valueName, parsed)
			return
		}
	}

	// Try DWORD value
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
		log.Printf("CSP: Loaded %s = %d", valueName, int(val))
	}
}

// loadStringArrayFromRegistry loads a string array from registry.
// Arrays can be stored as comma-separated values or multi-string (REG_MULTI_SZ).
func loadStringArrayFromRegistry(key registry.Key, valueName string, target *[]string) {
	// Try multi-string value first (REG_MULTI_SZ)
	if vals, _, err := key.GetStringsValue(valueName); err == nil && len(vals) > 0 {
		filtered := make([]string, 0, len(vals))
		for _, val := range vals {
			if strings.TrimSpace(val) != "" {
				filtered = append(filtered, strings.TrimSpace(val))
			}
		}
		if len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
			return
		}
	}

	// Try single string value with comma separation
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		parts := strings.Split(val, ",")
		filtered := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				filtered = append(filtered, trimmed)
			}
		}
		if len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
		}
	}
}
