package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/bucketfront"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config file",
	Long: `Interactively ask for the bucket, credentials and serving options and
write them to a YAML config file. Everything not asked for keeps its default.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runInit,
}

var initOutput string

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "file to write")

	rootCmd.AddCommand(initCmd)
}

// starterConfig is the subset of config.Config the wizard fills in.
type starterConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Bucket       string `yaml:"bucket"`
		Region       string `yaml:"region"`
		Endpoint     string `yaml:"endpoint,omitempty"`
		AccessKey    string `yaml:"access_key"`
		SecretKey    string `yaml:"secret_key"`
		UsePathStyle bool   `yaml:"use_path_style"`
		Prefix       string `yaml:"prefix"`
	} `yaml:"storage"`
	Fallback struct {
		Policy string `yaml:"policy"`
	} `yaml:"fallback"`
}

func runInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(initOutput); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", initOutput),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	var sc starterConfig
	var err error

	if sc.Storage.Bucket, err = ask(promptui.Prompt{Label: "Bucket", Validate: required("bucket")}); err != nil {
		return handlePromptError(err)
	}
	if sc.Storage.Region, err = ask(promptui.Prompt{Label: "Region", Default: "us-east-1", Validate: required("region")}); err != nil {
		return handlePromptError(err)
	}
	if sc.Storage.Endpoint, err = ask(promptui.Prompt{Label: "Endpoint URL (empty for AWS)", Validate: optionalURL}); err != nil {
		return handlePromptError(err)
	}
	if sc.Storage.AccessKey, err = ask(promptui.Prompt{Label: "Access Key", Validate: required("access key")}); err != nil {
		return handlePromptError(err)
	}
	if sc.Storage.SecretKey, err = ask(promptui.Prompt{Label: "Secret Key", Mask: '*', Validate: required("secret key")}); err != nil {
		return handlePromptError(err)
	}
	if sc.Storage.Prefix, err = ask(promptui.Prompt{Label: "Key prefix", Default: bucketfront.DefaultPrefix}); err != nil {
		return handlePromptError(err)
	}

	sc.Storage.UsePathStyle = sc.Storage.Endpoint != ""
	if sc.Storage.UsePathStyle {
		pathStyle := promptui.Prompt{Label: "Use path-style addressing", IsConfirm: true, Default: "y"}
		if _, promptErr := pathStyle.Run(); promptErr != nil {
			sc.Storage.UsePathStyle = false
		}
	}

	policy := promptui.Select{
		Label: "Index fallback policy",
		Items: []bucketfront.FallbackPolicy{
			bucketfront.FallbackWalkUp,
			bucketfront.FallbackFirstLevel,
			bucketfront.FallbackNone,
		},
	}
	if _, sc.Fallback.Policy, err = policy.Run(); err != nil {
		return handlePromptError(err)
	}

	port, err := ask(promptui.Prompt{Label: "Port", Default: "3000", Validate: validPort})
	if err != nil {
		return handlePromptError(err)
	}
	sc.Server.Port, _ = strconv.Atoi(port)

	out, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(initOutput, out, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Config written to %s.\n", initOutput)
	fmt.Printf("Run 'bucketfront serve -c %s' to start serving.\n", initOutput)
	return nil
}

func ask(p promptui.Prompt) (string, error) {
	return p.Run()
}

func required(name string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func optionalURL(input string) error {
	if input == "" {
		return nil
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func validPort(input string) error {
	port, err := strconv.Atoi(input)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
