package config

import (
	"bytes"
	"strings"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/component"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Cfg struct {
	LoggerConfig     component.Logger   `mapstructure:"logger"`
	ServerConfig     component.Server   `mapstructure:"server"`
	Sensors          []component.Sensor `mapstructure:"sensors"`
	EnablePrometheus bool               `mapstructure:"enable_prometheus"`
	MetricsAddr      string             `mapstructure:"metrics_addr"`
}

var configPaths = []string{"./configs/", "./internal/config/", "/configs/"}

var defaultConfig = []byte(`
{
	"logger": {
		"level": "INFO",
		"format": "TEXT",
		"disable_timestamp": false
	},

	"server": {
		"host": "localhost",
		"port": 46010,
		"namespace_uri": "http://github.com/amine-amaach/simulators/ioTSensorsUaBridge",
		"users": [
			{
				"username": "root",
				"password": "secret"
			}
		],
		"additional_hosts": [],
		"additional_ips": [],
		"cert_file": "./uaServerCerts/pki/server.crt",
		"key_file": "./uaServerCerts/pki/server.key"
	},

	"sensors": [
		{
			"name": "Temperature",
			"node_id": "ns=2;s=Temperature",
			"mean": 20.0,
			"standard_deviation": 5.0,
			"delay_ms": 2000,
			"writable": false
		},
		{
			"name": "Pressure",
			"node_id": "ns=2;s=Pressure",
			"mean": 80.0,
			"standard_deviation": 7.0,
			"delay_ms": 3000,
			"writable": false
		},
		{
			"name": "Air Quality",
			"node_id": "",
			"mean": 13.0,
			"standard_deviation": 3.0,
			"delay_ms": 5000,
			"writable": true
		}
	],

	"enable_prometheus": true,
	"metrics_addr": ":8080"
}
`)

// GetConfigs reads config.json from the usual locations.
func GetConfigs(logger *logrus.Logger) (Cfg, error) {
	return Load(logger, configPaths...)
}

// Load merges the first config.json found in paths over the embedded
// defaults. Environment variables prefixed with UABRIDGE override both,
// e.g. UABRIDGE_SERVER_PORT.
func Load(logger *logrus.Logger, paths ...string) (Cfg, error) {
	var configs Cfg
	v := viper.New()

	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return configs, errors.Wrap(err, "parsing default configs")
	}

	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Errorln("Config file was found but another error was produced ⛔")
			return configs, errors.Wrap(err, "reading config file")
		}
		logger.Warnln("⛔ Config file not found! using default configs ⛔")
	} else {
		logger.WithField("File", v.ConfigFileUsed()).Infoln("Config file found")
	}

	v.SetEnvPrefix("UABRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&configs); err != nil {
		logger.Errorln("Unable to unmarshal configs ⛔")
		return configs, errors.Wrap(err, "decoding configs")
	}
	logger.Infoln("Configs parsed successfully ✅")
	return configs, nil
}
