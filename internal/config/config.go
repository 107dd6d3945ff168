package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env   string `yaml:"env" env-default:"local"`
	Voice struct {
		Domain        string `yaml:"domain" env:"DOMAIN_NAME" env-default:"localhost:9100"`
		Scheme        string `yaml:"scheme" env-default:"https"`
		Path          string `yaml:"path" env-default:"/gather-payment-method"`
		Voice         string `yaml:"voice" env-default:"Polly.Salli"`
		FinishOnKey   string `yaml:"finish_on_key" env-default:"#"`
		GatherTimeout int    `yaml:"gather_timeout" env-default:"5"`
		AuthToken     string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN" env-default:""`
		// ValidateSignature enables X-Twilio-Signature checks on the webhook.
		ValidateSignature bool `yaml:"validate_signature" env-default:"false"`
	} `yaml:"voice"`
	Flow struct {
		StateTTL                time.Duration `yaml:"state_ttl" env-default:"1h"`
		StrictSecurityCodeRetry bool          `yaml:"strict_security_code_retry" env-default:"false"`
		StatusPause             int           `yaml:"status_pause" env-default:"2"`
		// PendingTimeout ends the status poll when a payment has been
		// pending for longer.
		PendingTimeout time.Duration `yaml:"pending_timeout" env-default:"2m"`
	} `yaml:"flow"`
	Store struct {
		Driver    string `yaml:"driver" env-default:"redis"`
		Service   string `yaml:"service" env:"STORE_SERVICE_ID" env-default:"payivr"`
		CacheMap  string `yaml:"cache_map" env-default:"FunctionsCache"`
		ResultMap string `yaml:"result_map" env-default:"PaymentResult"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr" env-default:"127.0.0.1:6379"`
		Password string `yaml:"password" env-default:""`
		DB       int    `yaml:"db" env-default:"0"`
	} `yaml:"redis"`
	Nats struct {
		URL string `yaml:"url" env-default:"nats://127.0.0.1:4222"`
	} `yaml:"nats"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:"payivr"`
	} `yaml:"mongo"`
	Payment struct {
		Workers   int           `yaml:"workers" env-default:"4"`
		QueueSize int           `yaml:"queue_size" env-default:"100"`
		Timeout   time.Duration `yaml:"timeout" env-default:"30s"`
	} `yaml:"payment"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"PayIVRBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env-default:"true"`
		Path    string `yaml:"path" env-default:"/metrics"`
	} `yaml:"metrics"`
	Listen struct {
		BindIP  string        `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string        `yaml:"port" env-default:"9100"`
		ApiKey  string        `yaml:"key" env-default:""`
		Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	once.Do(func() {
		conf, err := Load(path)
		if err != nil {
			log.Fatal(err)
		}
		instance = conf
	})
	return instance
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("%s; %s", err, desc)
	}
	return conf, nil
}

// WebhookURL is the absolute URL the voice platform calls back on.
func (c *Config) WebhookURL() string {
	return fmt.Sprintf("%s://%s%s", c.Voice.Scheme, c.Voice.Domain, c.Voice.Path)
}
