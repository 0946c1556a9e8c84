// Package cli provides command definitions for allagents.
package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/EntityProcess/allagents-sub002/internal/config"
	"github.com/EntityProcess/allagents-sub002/internal/model"
	"github.com/EntityProcess/allagents-sub002/internal/sync"
	"github.com/EntityProcess/allagents-sub002/internal/ui"
	"github.com/EntityProcess/allagents-sub002/internal/ui/tui"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync plugin content into client directories",
		Description: `Resolve the workspace's plugins, scan their content, and place
   skills, commands, hooks, and agents into each configured client's
   directory layout.

   Examples:
     allagents sync
     allagents sync --scope user
     allagents sync --mode copy --dry-run`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Project directory containing the workspace file",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Target scope: project or user",
				Value:   "project",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Override sync mode: symlink or copy",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Resolve plugins from the local cache only",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Pick target clients interactively",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			projectDir := cmd.String("dir")

			parsed, err := config.Load(projectDir)
			if err != nil {
				return fmt.Errorf("loading workspace: %w", err)
			}
			if !parsed.OK {
				printIssues(parsed.Issues)
				return fmt.Errorf("workspace file is invalid")
			}
			ws := parsed.Workspace

			scope, err := model.ParseScope(cmd.String("scope"))
			if err != nil {
				return err
			}

			opts := sync.Options{
				WorkspaceDir: projectDir,
				Scope:        scope,
				DryRun:       cmd.Bool("dry-run"),
				Offline:      cmd.Bool("offline"),
			}

			if modeFlag := cmd.String("mode"); modeFlag != "" {
				mode, err := model.ParseSyncMode(modeFlag)
				if err != nil {
					return err
				}
				opts.Mode = mode
			}

			if cmd.Bool("interactive") {
				if !ui.IsTerminal() {
					return fmt.Errorf("--interactive requires a terminal")
				}
				picked, err := tui.PickClients(model.AllClients(), ws.Clients)
				if err != nil {
					return err
				}
				if !picked.Confirmed {
					fmt.Println("Sync cancelled")
					return nil
				}
				if len(picked.Clients) == 0 {
					return fmt.Errorf("no clients selected")
				}
				opts.Clients = picked.Clients
			}

			result, err := sync.NewDefault(projectDir).Sync(ctx, ws, opts)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Print(result.Summary())
			if !result.Success {
				return fmt.Errorf("no plugins synced successfully")
			}
			fmt.Println(ui.StatusSuccess("sync complete"))
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the workspace file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Project directory containing the workspace file",
				Value:   ".",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			projectDir := cmd.String("dir")

			parsed, err := config.Load(projectDir)
			if err != nil {
				return fmt.Errorf("loading workspace: %w", err)
			}
			if !parsed.OK {
				printIssues(parsed.Issues)
				return fmt.Errorf("workspace file is invalid")
			}

			ws := parsed.Workspace
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s is valid", config.FilePath(projectDir))))
			fmt.Printf("  Plugins: %d\n", len(ws.Plugins))
			fmt.Printf("  Clients: %d\n", len(ws.Clients))
			fmt.Printf("  Mode:    %s\n", ws.SyncMode)
			return nil
		},
	}
}

func clientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "clients",
		Usage: "List supported clients and their directory layouts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Show paths for project or user scope",
				Value:   "project",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			scope, err := model.ParseScope(cmd.String("scope"))
			if err != nil {
				return err
			}

			title := cases.Title(language.English)
			fmt.Println(ui.Header(fmt.Sprintf("Supported clients (%s scope)", scope)))
			for _, client := range model.AllClients() {
				mapping, ok := model.MappingFor(client, scope)
				if !ok {
					continue
				}
				name := title.String(string(client))
				if mapping.Universal {
					name += " " + ui.Dim("(reads canonical store)")
				}
				fmt.Printf("\n%s\n", ui.Bold(name))
				for _, category := range model.AllCategories() {
					path, supported := mapping.CategoryPath(category)
					if !supported {
						fmt.Printf("  %-9s %s\n", category.DirName()+":", ui.Dim("not supported"))
						continue
					}
					fmt.Printf("  %-9s %s\n", category.DirName()+":", path)
				}
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show what the last sync placed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Project directory containing the workspace file",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Scope to inspect: project or user",
				Value:   "project",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			scope, err := model.ParseScope(cmd.String("scope"))
			if err != nil {
				return err
			}
			root, err := scope.Root(cmd.String("dir"))
			if err != nil {
				return err
			}

			state := sync.LoadState(root)
			if state.LastSync.IsZero() {
				fmt.Println("No sync recorded for this scope")
				return nil
			}

			fmt.Printf("Last sync: %s\n", state.LastSync.Format("2006-01-02 15:04:05"))
			total := 0
			for _, client := range clientOrder(state) {
				paths := state.Files[client]
				fmt.Printf("\n%s (%d):\n", ui.Bold(string(client)), len(paths))
				for _, p := range paths {
					fmt.Printf("  %s\n", p)
				}
				total += len(paths)
			}
			for scp, servers := range state.MCPServers {
				fmt.Printf("\nMCP servers (%s): %v\n", scp, servers)
			}
			fmt.Printf("\n%d tracked path(s)\n", total)
			return nil
		},
	}
}

// clientOrder returns the state's clients sorted, canonical store last.
func clientOrder(state *sync.State) []model.ClientID {
	var clients []model.ClientID
	canonical := false
	for client := range state.Files {
		if client == model.ClientCanonical {
			canonical = true
			continue
		}
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })
	if canonical {
		clients = append(clients, model.ClientCanonical)
	}
	return clients
}

func printIssues(issues []config.Issue) {
	fmt.Println(ui.StatusError("workspace validation failed:"))
	for _, issue := range issues {
		fmt.Printf("  %s %s\n", ui.Error(ui.SymbolError), issue)
	}
}
