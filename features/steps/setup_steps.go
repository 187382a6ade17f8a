//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/videocraft/videocraft-core/internal/cli"
	"github.com/videocraft/videocraft-core/internal/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cli.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

var setupEnv = []string{
	config.EnvAPIURL,
	config.EnvPort,
	config.EnvLogLevel,
	config.EnvOutputDir,
	config.EnvHTTPTimeout,
	config.EnvConfigFile,
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext
	saved := map[string]string{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "videocraft", "config.yaml")
		testCtx.originalContent = ""
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil

		// Setup validates the written file through config.Load, which reads env.
		for _, name := range setupEnv {
			if v, ok := os.LookupEnv(name); ok {
				saved[name] = v
			}
			os.Unsetenv(name)
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		for name, v := range saved {
			os.Setenv(name, v)
		}
		clear(saved)
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command expecting failure with inputs:$`, testCtx.iRunTheSetupCommandExpectingFailure)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, testCtx.iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^no config file should exist$`, testCtx.noConfigFileShouldExist)
	ctx.Step(`^the config should have api_url "([^"]*)"$`, testCtx.theConfigShouldHaveAPIURL)
	ctx.Step(`^the config should have port (\d+)$`, testCtx.theConfigShouldHavePort)
	ctx.Step(`^the config should have output_dir "([^"]*)"$`, testCtx.theConfigShouldHaveOutputDir)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^setup should fail mentioning "([^"]*)"$`, testCtx.setupShouldFailMentioning)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	content := `api_url: http://original.local:8000
port: 9100
output_dir: /original/exports
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) run(confirms []bool, table *godog.Table) error {
	var inputs []string
	if table != nil {
		inputs = parseInputTable(table)
	}
	s.err = cli.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath, s.output)
	return s.err
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	if err := s.run(nil, table); err != nil {
		return fmt.Errorf("setup command failed: %w", err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandExpectingFailure(table *godog.Table) error {
	s.run(nil, table)
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	if err := s.run([]bool{confirm}, nil); err != nil {
		return fmt.Errorf("setup command failed: %w", err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmationAndInputs(confirmation string, table *godog.Table) error {
	confirm := strings.ToLower(confirmation) == "y"
	if err := s.run([]bool{confirm}, table); err != nil {
		return fmt.Errorf("setup command failed: %w", err)
	}
	return nil
}

func parseInputTable(table *godog.Table) []string {
	var inputs []string
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		inputs = append(inputs, row.Cells[1].Value)
	}
	return inputs
}

func (s *setupContext) loadConfig() (*config.EnvConfig, error) {
	return config.Load(s.configPath)
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) noConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err == nil {
		return fmt.Errorf("config file unexpectedly exists at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveAPIURL(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIURL() != expected {
		return fmt.Errorf("expected api_url %q, got %q", expected, cfg.APIURL())
	}
	return nil
}

func (s *setupContext) theConfigShouldHavePort(expected int) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Port() != expected {
		return fmt.Errorf("expected port %d, got %d", expected, cfg.Port())
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveOutputDir(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.OutputDir() != expected {
		return fmt.Errorf("expected output_dir %q, got %q", expected, cfg.OutputDir())
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output was:\n%s", s.output.String())
	}
	return nil
}

func (s *setupContext) setupShouldFailMentioning(text string) error {
	if s.err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(s.err.Error(), text) {
		return fmt.Errorf("expected error to mention %q, got %v", text, s.err)
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config was modified:\n%s", data)
	}
	return nil
}
