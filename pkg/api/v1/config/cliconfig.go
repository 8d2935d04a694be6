package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/koding/multiconfig"
	"github.com/nergy-se/wemportal/pkg/model"
)

type CliConfig struct {
	Server    string `default:"https://www.wemportal.com"`
	WebServer string

	Username     string
	Password     string
	PasswordFile string

	PollInterval            string `default:"15m"`
	Granularity             string `default:"daily"`
	Concurrency             int    `default:"1"`
	TolerateParameterErrors bool

	Listen  string `default:":8080"`
	HTTPLog bool

	MQTTListen   string `default:":1883"`
	MQTTBroker   string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string `default:"wemportal"`

	LogLevel string `default:"info"`

	mutex sync.RWMutex
}

// Load reads defaults from struct tags, then WEMPORTAL_ prefixed environment
// variables and last command line flags.
func Load(args []string) (*CliConfig, error) {
	c := &CliConfig{}
	loader := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{Prefix: "WEMPORTAL"},
		&multiconfig.FlagLoader{Args: args},
	)
	if err := loader.Load(c); err != nil {
		return nil, err
	}
	if err := c.LoadPassword(); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *CliConfig) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Secret() == "" {
		return errors.New("password or passwordfile is required")
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	if _, err := c.GraphType(); err != nil {
		return err
	}
	return nil
}

func (c *CliConfig) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("error parsing pollinterval: %w", err)
	}
	if d < time.Minute {
		return 0, fmt.Errorf("pollinterval %s is below one minute", d)
	}
	return d, nil
}

func (c *CliConfig) GraphType() (model.GraphType, error) {
	return model.ParseGraphType(c.Granularity)
}

// WebServerURL defaults to Server.
func (c *CliConfig) WebServerURL() string {
	if c.WebServer != "" {
		return c.WebServer
	}
	return c.Server
}

func (c *CliConfig) Secret() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.Password
}

// LoadPassword reads PasswordFile when it is set and Password is not.
func (c *CliConfig) LoadPassword() error {
	if c.PasswordFile == "" || c.Secret() != "" {
		return nil
	}
	b, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return fmt.Errorf("error reading passwordfile: %w", err)
	}
	c.mutex.Lock()
	c.Password = string(bytes.TrimSpace(b))
	c.mutex.Unlock()
	return nil
}
