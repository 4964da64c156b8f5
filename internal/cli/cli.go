// Package cli provides the command-line interface for the webmint
// deployment pipeline. It wires configuration, the provider client, and the
// deployment orchestrator into urfave/cli commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/webmint-project/webmint/internal/artifact"
	"github.com/webmint-project/webmint/internal/config"
	"github.com/webmint-project/webmint/internal/deploy"
	"github.com/webmint-project/webmint/internal/generate"
	"github.com/webmint-project/webmint/internal/history"
	"github.com/webmint-project/webmint/internal/logger"
	"github.com/webmint-project/webmint/internal/pages"
	"github.com/webmint-project/webmint/internal/project"
)

// NewApp creates and configures the main CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:     "webmint",
		Usage:    "Generate and deploy static web pages",
		Version:  "1.0.0",
		Compiled: time.Now(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "webmint.yaml",
				Usage:   "path to configuration file",
				EnvVars: []string{"WEBMINT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"WEBMINT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format (text, json)",
				EnvVars: []string{"WEBMINT_LOG_FORMAT"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "deploy",
				Usage: "Package page content and deploy it to the hosting provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "project name hint (sanitized into the provider's constraints)",
					},
					&cli.StringFlag{
						Name:  "html-file",
						Usage: "path to the HTML body content",
					},
					&cli.StringFlag{
						Name:  "css-file",
						Usage: "path to the stylesheet content",
					},
					&cli.StringFlag{
						Name:  "js-file",
						Usage: "path to the script content",
					},
					&cli.StringFlag{
						Name:    "prompt",
						Aliases: []string{"p"},
						Usage:   "generate page content from a natural-language prompt instead of files",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "text",
						Usage: "output format (text, json)",
					},
				},
				Action: deployAction,
			},
			{
				Name:  "projects",
				Usage: "Manage provider projects",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List projects with their recent deployments",
						Action: listProjectsAction,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "output",
								Value: "text",
								Usage: "output format (text, json)",
							},
						},
					},
					{
						Name:      "delete",
						Usage:     "Delete a project and all its deployments",
						ArgsUsage: "<name>",
						Action:    deleteProjectAction,
					},
				},
			},
			{
				Name:  "deployments",
				Usage: "Manage deployments of a project",
				Subcommands: []*cli.Command{
					{
						Name:      "delete",
						Usage:     "Delete a single deployment",
						ArgsUsage: "<project> <deployment-id>",
						Action:    deleteDeploymentAction,
					},
				},
			},
			{
				Name:  "history",
				Usage: "Show locally recorded deployment history",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum number of records to show",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "restrict to a single project",
					},
				},
				Action: historyAction,
			},
		},
	}
}

// setup loads configuration and builds the logger plus provider client
// shared by every command.
func setup(c *cli.Context) (*config.Config, *slog.Logger, pages.Client, error) {
	log, err := logger.New(c.String("log-level"), c.String("log-format"))
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := pages.NewClient(pages.Config{
		BaseURL:   cfg.Provider.BaseURL,
		AccountID: cfg.Provider.AccountID,
		APIToken:  cfg.Provider.APIToken,
		UserAgent: cfg.Provider.UserAgent,
		Timeout:   cfg.Provider.GetTimeout(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	return cfg, log, client, nil
}

// newOrchestrator builds the deployment orchestrator from configuration.
func newOrchestrator(cfg *config.Config, log *slog.Logger, client pages.Client) *deploy.Orchestrator {
	resolver := project.NewResolver(client, cfg.Deploy.ProductionBranch, log)
	packager := artifact.NewPackager(artifact.PackagerConfig{
		InlineThreshold: cfg.Deploy.InlineThreshold,
	})

	var sink artifact.Sink = artifact.NopSink{}
	if cfg.Deploy.BackupDir != "" {
		sink = artifact.NewDirSink(cfg.Deploy.BackupDir)
	}

	return deploy.NewOrchestrator(client, resolver, packager, sink, log, deploy.Options{
		RequireAlias: cfg.Deploy.RequireAlias,
	})
}

// loadContent resolves the html/css/js inputs for a deploy, either from
// files or from the generation service when --prompt is given.
func loadContent(c *cli.Context, cfg *config.Config) (html, css, js string, err error) {
	if prompt := c.String("prompt"); prompt != "" {
		if !cfg.Generation.Enabled {
			return "", "", "", fmt.Errorf("generation is disabled in configuration")
		}
		gen, err := generate.NewClient(generate.Config{
			BaseURL: cfg.Generation.BaseURL,
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
		})
		if err != nil {
			return "", "", "", err
		}
		content, err := gen.Generate(c.Context, prompt)
		if err != nil {
			return "", "", "", fmt.Errorf("generation failed: %w", err)
		}
		return content.HTML, content.CSS, content.JS, nil
	}

	htmlPath := c.String("html-file")
	if htmlPath == "" {
		return "", "", "", fmt.Errorf("either --html-file or --prompt is required")
	}
	html, err = readContentFile(htmlPath)
	if err != nil {
		return "", "", "", err
	}
	if path := c.String("css-file"); path != "" {
		if css, err = readContentFile(path); err != nil {
			return "", "", "", err
		}
	}
	if path := c.String("js-file"); path != "" {
		if js, err = readContentFile(path); err != nil {
			return "", "", "", err
		}
	}
	return html, css, js, nil
}

func readContentFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// saveHistory records a deployment outcome locally. History is best-effort:
// a storage failure never fails the deploy command.
func saveHistory(cfg *config.Config, log *slog.Logger, result *deploy.Result, prompt string) {
	if cfg.Storage.DatabasePath == "" {
		return
	}
	db, err := history.InitDB(history.Config{
		DatabasePath: cfg.Storage.DatabasePath,
		LogLevel:     "silent",
	})
	if err != nil {
		log.Warn("failed to open history database", "error", err)
		return
	}
	defer func() {
		_ = db.Close()
	}()

	record := &history.Record{
		ProjectName:  result.ProjectName,
		DeploymentID: result.DeploymentID,
		URL:          result.URL,
		Method:       result.Method,
		Success:      result.Success,
		Warning:      result.Warning,
		Prompt:       prompt,
		DeployedAt:   result.CreatedAt,
	}
	if err := db.Save(record); err != nil {
		log.Warn("failed to save history record", "error", err)
	}
}

// displayName renders a project name for human-readable output.
func displayName(name string) string {
	return artifact.PageTitle(strings.TrimSpace(name))
}
