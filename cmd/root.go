package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/scoring"
	"github.com/kayaan/driver-gtm/internal/secrets"
)

const (
	app = "driver-gtm"
)

type Config struct {
	Environment string        `mapstructure:"environment"`
	DAT         *DATConfig    `mapstructure:"dat"`
	USDOT       *USDOTConfig  `mapstructure:"usdot"`
	Server      *ServerConfig `mapstructure:"server"`
	Search      *SearchConfig `mapstructure:"search"`
}

type DATConfig struct {
	Username     string `mapstructure:"username"`
	UsernameFile string `mapstructure:"username-file"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	User         string `mapstructure:"user"`
	UserFile     string `mapstructure:"user-file"`
}

type USDOTConfig struct {
	AppToken     string `mapstructure:"app-token"`
	AppTokenFile string `mapstructure:"app-token-file"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type SearchConfig struct {
	City              string   `mapstructure:"city"`
	State             string   `mapstructure:"state"`
	EquipmentTypes    []string `mapstructure:"equipment-types"`
	LoadType          string   `mapstructure:"load-type"`
	Limit             int      `mapstructure:"limit"`
	DestinationStates []string `mapstructure:"destination-states"`
	MaxDeadhead       float64  `mapstructure:"max-deadhead"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "driver-gtm finds small-carrier capacity and ranks freight for it",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"dat.username":         "DAT_USERNAME",
		"dat.username-file":    "DAT_USERNAME_FILE",
		"dat.password":         "DAT_PASSWORD",
		"dat.password-file":    "DAT_PASSWORD_FILE",
		"dat.user":             "DAT_USER",
		"dat.user-file":        "DAT_USER_FILE",
		"usdot.app-token":      "USDOT_APP_TOKEN",
		"usdot.app-token-file": "USDOT_APP_TOKEN_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is driver-gtm.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("environment", "e", dat.EnvStaging, "load board environment (staging or production)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("environment", rootCmd.PersistentFlags().Lookup("environment"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional; environment variables and flags can
	// carry a full configuration on their own.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.DAT == nil {
		config.DAT = &DATConfig{}
	}
	if config.USDOT == nil {
		config.USDOT = &USDOTConfig{}
	}

	return config, nil
}

// getScoringParams returns the default scoring model with any overrides from
// the scoring section of the configuration applied on top.
func getScoringParams() (scoring.Params, error) {
	params := scoring.DefaultParams()
	if err := viper.UnmarshalKey("scoring", &params); err != nil {
		return params, err
	}
	return params, nil
}

func resolveCredentials(config *DATConfig) (dat.Credentials, error) {
	username, err := secrets.Load(secrets.Source{
		Name:  "dat username",
		Value: config.Username,
		File:  config.UsernameFile,
	})
	if err != nil {
		return dat.Credentials{}, err
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "dat password",
		Value: config.Password,
		File:  config.PasswordFile,
	})
	if err != nil {
		return dat.Credentials{}, err
	}

	user, err := secrets.Load(secrets.Source{
		Name:  "dat user",
		Value: config.User,
		File:  config.UserFile,
	})
	if err != nil {
		return dat.Credentials{}, err
	}

	return dat.Credentials{Username: username, Password: password, User: user}, nil
}

func resolveAppToken(config *USDOTConfig) string {
	token, err := secrets.Load(secrets.Source{
		Name:  "usdot app token",
		Value: config.AppToken,
		File:  config.AppTokenFile,
	})
	if err != nil {
		// The registry works unauthenticated at a lower rate limit.
		return ""
	}
	return token
}
