package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/webmint-project/webmint/internal/deploy"
	"github.com/webmint-project/webmint/internal/history"
	"github.com/webmint-project/webmint/internal/progress"
)

// deployAction runs one deployment attempt and prints its event stream.
func deployAction(c *cli.Context) error {
	cfg, log, client, err := setup(c)
	if err != nil {
		return err
	}

	html, css, js, err := loadContent(c, cfg)
	if err != nil {
		return err
	}

	nameHint := c.String("name")
	if nameHint == "" {
		nameHint = cfg.Deploy.DefaultProject
	}

	orchestrator := newOrchestrator(cfg, log, client)
	events := orchestrator.Deploy(c.Context, nameHint, html, css, js)

	jsonOutput := c.String("output") == "json"
	var result *deploy.Result
	var failure string

	for event := range events {
		switch event.Type {
		case progress.EventStatus:
			if !jsonOutput {
				fmt.Printf("[%3d%%] %s\n", event.Progress, event.Message)
			}
		case progress.EventComplete:
			result, _ = event.Result.(*deploy.Result)
		case progress.EventError:
			failure = event.Message
		}
	}

	if failure != "" {
		return cli.Exit(fmt.Sprintf("deploy failed: %s", failure), 1)
	}
	if result == nil {
		return cli.Exit("deploy produced no result", 1)
	}

	saveHistory(cfg, log, result, c.String("prompt"))

	if jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}

	fmt.Printf("\n%s is live at %s\n", displayName(result.ProjectName), result.URL)
	if result.Warning != "" {
		fmt.Printf("warning: %s\n", result.Warning)
	}
	return nil
}

// listProjectsAction prints all projects with their recent deployments.
func listProjectsAction(c *cli.Context) error {
	cfg, log, client, err := setup(c)
	if err != nil {
		return err
	}

	orchestrator := newOrchestrator(cfg, log, client)
	infos, err := orchestrator.ListProjects(c.Context)
	if err != nil {
		return err
	}

	if c.String("output") == "json" {
		encoded, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode projects: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}

	if len(infos) == 0 {
		fmt.Println("no projects")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  (created %s)\n",
			info.Name, info.Domain, info.CreatedAt.Format("2006-01-02"))
		for _, d := range info.RecentDeployments {
			fmt.Printf("    %s  %s  %s\n", d.ID, d.Environment, d.URL)
		}
	}
	return nil
}

// deleteProjectAction removes a project at the provider.
func deleteProjectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: webmint projects delete <name>", 1)
	}
	cfg, log, client, err := setup(c)
	if err != nil {
		return err
	}

	name := c.Args().Get(0)
	orchestrator := newOrchestrator(cfg, log, client)
	if err := orchestrator.DeleteProject(c.Context, name); err != nil {
		return err
	}
	fmt.Printf("deleted project %s\n", name)
	return nil
}

// deleteDeploymentAction removes a single deployment.
func deleteDeploymentAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: webmint deployments delete <project> <deployment-id>", 1)
	}
	cfg, log, client, err := setup(c)
	if err != nil {
		return err
	}

	projectName := c.Args().Get(0)
	deploymentID := c.Args().Get(1)
	orchestrator := newOrchestrator(cfg, log, client)
	if err := orchestrator.DeleteDeployment(c.Context, projectName, deploymentID); err != nil {
		return err
	}
	fmt.Printf("deleted deployment %s of %s\n", deploymentID, projectName)
	return nil
}

// historyAction prints locally recorded deployment outcomes.
func historyAction(c *cli.Context) error {
	cfg, _, _, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.Storage.DatabasePath == "" {
		return cli.Exit("history is disabled: no storage database_path configured", 1)
	}
	if _, statErr := os.Stat(cfg.Storage.DatabasePath); os.IsNotExist(statErr) {
		fmt.Println("no deployment history")
		return nil
	}

	db, err := history.InitDB(history.Config{
		DatabasePath: cfg.Storage.DatabasePath,
		LogLevel:     "silent",
	})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	var records []*history.Record
	if projectName := c.String("project"); projectName != "" {
		records, err = db.ListByProject(projectName)
	} else {
		records, err = db.List(c.Int("limit"))
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no deployment history")
		return nil
	}
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		} else if r.Warning != "" {
			status = "partial"
		}
		fmt.Printf("%s  %-8s  %s  %s\n",
			r.DeployedAt.Format("2006-01-02 15:04"), status, r.ProjectName, r.URL)
	}
	return nil
}
