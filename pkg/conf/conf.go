// Package conf reads the ambient settings of a run: logging and the progress
// strategy. Values come from BSAB_* environment variables and, when
// BSAB_CONFIG names one, a config file in any format viper understands.
// Command-line options never pass through here.
package conf

import (
	"strings"

	"bsab/pkg/progress"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "BSAB"

const (
	keyConfig    = "config"
	keyLogLevel  = "log_level"
	keyLogFormat = "log_format"
	keyLogFile   = "log_file"
	keyProgress  = "progress"
)

var ErrInvalidSetting = errors.New("invalid setting")

// Settings holds the resolved ambient configuration.
type Settings struct {
	LogLevel  string
	LogFormat string
	LogFile   string
	Progress  progress.Mode
}

func setup() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyProgress, string(progress.ModeAuto))
	return v
}

// Load resolves Settings from the environment and the optional config file.
func Load() (Settings, error) {
	v := setup()

	if file := v.GetString(keyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.Wrapf(err, "read config %s", file)
		}
	}

	s := Settings{
		LogLevel:  strings.ToLower(v.GetString(keyLogLevel)),
		LogFormat: strings.ToLower(v.GetString(keyLogFormat)),
		LogFile:   v.GetString(keyLogFile),
		Progress:  progress.Mode(strings.ToLower(v.GetString(keyProgress))),
	}

	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return Settings{}, errors.Wrapf(ErrInvalidSetting, "%s_%s=%q", envPrefix, strings.ToUpper(keyLogLevel), s.LogLevel)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return Settings{}, errors.Wrapf(ErrInvalidSetting, "%s_%s=%q", envPrefix, strings.ToUpper(keyLogFormat), s.LogFormat)
	}
	switch s.Progress {
	case progress.ModeAuto, progress.ModeOverwrite, progress.ModeLine:
	default:
		return Settings{}, errors.Wrapf(ErrInvalidSetting, "%s_%s=%q", envPrefix, strings.ToUpper(keyProgress), s.Progress)
	}
	return s, nil
}
