package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/loykin/apiscope/internal/common"
)

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // default true
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // force colors for text output
}

// ConfigDoc is the CLI settings file.
type ConfigDoc struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	// Bootstrap is the bootstrap configuration file. The --config flag and
	// APISCOPE_CONFIG take precedence.
	Bootstrap string `mapstructure:"bootstrap" yaml:"bootstrap"`
	// BaseDir anchors classpath: reads. Relative paths resolve against the
	// settings file's directory.
	BaseDir     string         `mapstructure:"base_dir" yaml:"base_dir"`
	ClientClass string         `mapstructure:"client_class" yaml:"client_class"`
	Vars        map[string]any `mapstructure:"vars" yaml:"vars"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	switch strings.ToLower(filepath.Ext(clean)) {
	case ".json", ".toml":
		// viper lower-cases keys, including those under vars
		sv := viper.New()
		sv.SetConfigFile(clean)
		if err := sv.ReadInConfig(); err != nil {
			return err
		}
		if err := c.Decode(sv.AllSettings()); err != nil {
			return err
		}
	default:
		// #nosec G304 -- settings path is provided intentionally by the user/CI; cleaned and validated above
		f, err := os.Open(clean)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return err
		}
	}
	if c.BaseDir != "" && !filepath.IsAbs(c.BaseDir) {
		c.BaseDir = filepath.Join(filepath.Dir(clean), c.BaseDir)
	}
	return nil
}

// Decode fills the document from loosely typed settings.
func (c *ConfigDoc) Decode(settings map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(settings)
}

func (c *ConfigDoc) parseLogLevel() (common.LogLevel, error) {
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "error":
		return common.LogLevelError, nil
	case "warn", "warning":
		return common.LogLevelWarn, nil
	case "info", "":
		return common.LogLevelInfo, nil
	case "debug":
		return common.LogLevelDebug, nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings. Logs
// go to w so command output on stdout stays parseable.
func (c *ConfigDoc) SetupLogging(w io.Writer) error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *common.Logger
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))

	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	switch format {
	case "json":
		logger = common.NewJSONLoggerWithWriter(w, level)
	case "color", "colour":
		logger = common.NewColorLoggerWithWriter(w, level)
	case "text", "":
		if useColor {
			logger = common.NewColorLoggerWithWriter(w, level)
		} else {
			logger = common.NewLoggerWithWriter(w, level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	if h, ok := logger.Handler().(*common.ColorHandler); ok && c.Logging.Color != nil {
		h.SetColorEnabled(*c.Logging.Color)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)
	common.EnableMasking(maskingEnabled)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
