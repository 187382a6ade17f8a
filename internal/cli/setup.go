package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/videocraft/videocraft-core/internal/config"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

func newSetupCommand(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the configuration file interactively",
		Long: `Prompts for the backend URL, local port, output directory and timeouts,
and writes them to the config file. Environment variables still override
the file at run time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSetupWithPrompter(DefaultPrompter, configPath(), DefaultOutput)
		},
	}
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", configPath), false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to VideoCraft setup!")
	fmt.Fprintln(out)

	f := &config.File{}

	apiURL, err := prompter.Input("Backend API URL?", config.DefaultAPIURL)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if apiURL == "" {
		apiURL = config.DefaultAPIURL
	}
	f.APIURL = apiURL

	port, err := prompter.Input("Local API port?", strconv.Itoa(config.DefaultPort))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("port must be a number between 1 and 65535")
		}
		f.Port = n
	}

	outputDir, err := prompter.Input("Where should exports be saved?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	f.OutputDir = outputDir

	timeout, err := prompter.Input("Backend request timeout?", config.DefaultHTTPTimeout.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	f.HTTPTimeout = timeout

	if err := config.SaveFile(f, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Load it back so a bad URL or timeout is reported now, not at serve time.
	if _, err := config.Load(configPath); err != nil {
		return fmt.Errorf("saved configuration is invalid: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}
