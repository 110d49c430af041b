package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/imamik/unicloud/internal/state"
)

var validate = validator.New()

// Config selects a provider and holds its connection settings.
type Config struct {
	Provider  string          `yaml:"provider" validate:"required,oneof=aws openstack hcloud"`
	AWS       AWSConfig       `yaml:"aws" validate:"-"`
	OpenStack OpenStackConfig `yaml:"openstack" validate:"-"`
	HCloud    HCloudConfig    `yaml:"hcloud" validate:"-"`
}

// AWSConfig configures the EC2 and S3 clients. Credentials come from the
// SDK's default chain.
type AWSConfig struct {
	Region       string `yaml:"region" validate:"required"`
	Profile      string `yaml:"profile"`
	EC2Endpoint  string `yaml:"ec2_endpoint" validate:"omitempty,url"`
	S3Endpoint   string `yaml:"s3_endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// OpenStackConfig configures the nova and cinder clients.
type OpenStackConfig struct {
	AuthURL       string `yaml:"auth_url" validate:"required,url"`
	Region        string `yaml:"region" validate:"required"`
	TenantName    string `yaml:"tenant_name" validate:"required"`
	AuthMode      string `yaml:"auth_mode" validate:"omitempty,oneof=userpass userpass-v3 keypair"`
	UserDomain    string `yaml:"user_domain"`
	ProjectDomain string `yaml:"project_domain"`

	Username string `yaml:"-" validate:"required"`
	Password string `yaml:"-" validate:"required"`
}

// HCloudConfig configures the Hetzner Cloud client.
type HCloudConfig struct {
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	Token string `yaml:"-" validate:"required"`
}

// ProviderName returns the selected provider.
func (c *Config) ProviderName() state.Provider {
	return state.Provider(c.Provider)
}

// ApplyEnv fills secrets and unset fields from the environment.
func (c *Config) ApplyEnv() {
	c.HCloud.Token = firstNonEmpty(c.HCloud.Token, os.Getenv("HCLOUD_TOKEN"))

	ostack := &c.OpenStack
	ostack.Username = firstNonEmpty(ostack.Username, os.Getenv("OS_USERNAME"))
	ostack.Password = firstNonEmpty(ostack.Password, os.Getenv("OS_PASSWORD"))
	ostack.AuthURL = firstNonEmpty(ostack.AuthURL, os.Getenv("OS_AUTH_URL"))
	ostack.Region = firstNonEmpty(ostack.Region, os.Getenv("OS_REGION_NAME"))
	ostack.TenantName = firstNonEmpty(ostack.TenantName, os.Getenv("OS_PROJECT_NAME"), os.Getenv("OS_TENANT_NAME"))
	ostack.UserDomain = firstNonEmpty(ostack.UserDomain, os.Getenv("OS_USER_DOMAIN_NAME"))
	ostack.ProjectDomain = firstNonEmpty(ostack.ProjectDomain, os.Getenv("OS_PROJECT_DOMAIN_NAME"))

	c.AWS.Region = firstNonEmpty(c.AWS.Region, os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION"))
	c.AWS.Profile = firstNonEmpty(c.AWS.Profile, os.Getenv("AWS_PROFILE"))
}

// Validate checks the provider selection and the selected provider's section.
// Sections of other providers are ignored.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("provider must be one of %v (got %q)", state.Providers, c.Provider)
	}

	var section any
	switch c.ProviderName() {
	case state.ProviderAWS:
		section = c.AWS
	case state.ProviderOpenStack:
		section = c.OpenStack
	case state.ProviderHCloud:
		section = c.HCloud
	}
	if err := validate.Struct(section); err != nil {
		return fmt.Errorf("%s configuration: %w", c.Provider, err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
