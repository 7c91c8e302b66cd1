package main

import (
	"fmt"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/contract"
	"github.com/brizzai/realtor-cli/internal/server"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host a web front end behind the page guard",
	Long: `serve hosts a front end build from --static-dir. Pages are guarded by
the local session, /adminapi and /api are proxied to the backend and /auth
signs the session in and out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyServerFlags(cmd.Flags(), &cfg.Server); err != nil {
			return err
		}
		if cmd.Flags().Changed("app") {
			// the configured routes belong to the configured app
			cfg.Guard = config.GuardConfig{}.WithDefaults(cfg.Server.App)
		}

		var (
			console *server.Console
			gate    *auth.Gate
		)
		stop, err := build(&console, &gate)
		if err != nil {
			return err
		}
		defer stop()

		pterm.Info.Printfln("Serving the %s console on http://%s:%d", cfg.Server.App, cfg.Server.Host, cfg.Server.Port)
		if !gate.IsAuthenticated(cmd.Context()) {
			pterm.Warning.Println("Not signed in, pages redirect to " + cfg.Guard.LoginPath)
		}
		return console.Start(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the admin API as MCP tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyServerFlags(cmd.Flags(), &cfg.Server); err != nil {
			return err
		}

		var bridge *server.MCPServer
		stop, err := build(&bridge)
		if err != nil {
			return err
		}
		defer stop()

		return bridge.Start(cmd.Context())
	},
}

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "List the backend routes of the API contract",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			_, err := cmd.OutOrStdout().Write(contract.Document())
			return err
		}

		doc, err := contract.Load()
		if err != nil {
			return err
		}
		routes := contract.Routes(doc)
		return render(cmd.OutOrStdout(), cfg.Output, routes, func() pterm.TableData {
			rows := pterm.TableData{{"Method", "Path", "Operation", "Summary"}}
			for _, r := range routes {
				rows = append(rows, []string{r.Method, r.Path, r.OperationID, r.Summary})
			}
			return rows
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		pterm.Info.Println(config.GetVersionInfo())
	},
}

func init() {
	serveCmd.Flags().String("app", string(config.AppAdmin), "Front end to host (admin|chat|app)")
	serveCmd.Flags().String("static-dir", "", "Directory of the front end build")
	serveCmd.Flags().Int("port", 0, "Port to listen on")
	serveCmd.Flags().String("host", "", "Host to listen on")

	mcpCmd.Flags().String("mode", "", "Transport (stdio|sse|http)")
	mcpCmd.Flags().Int("port", 0, "Port to listen on for sse and http")
	mcpCmd.Flags().String("host", "", "Host to listen on for sse and http")

	contractCmd.Flags().Bool("raw", false, "Print the OpenAPI document")

	rootCmd.AddCommand(serveCmd, mcpCmd, contractCmd, versionCmd)
}

// applyServerFlags overrides the server config with the flags that were set
func applyServerFlags(fs *pflag.FlagSet, sc *config.ServerConfig) error {
	if fs.Changed("app") {
		app, _ := fs.GetString("app")
		switch config.App(app) {
		case config.AppAdmin, config.AppChat, config.AppPrefs:
			sc.App = config.App(app)
		default:
			return fmt.Errorf("unknown app %q, use admin, chat or app", app)
		}
	}
	if fs.Changed("mode") {
		mode, _ := fs.GetString("mode")
		switch config.ServerMode(mode) {
		case config.ServerModeSSE, config.ServerModeHTTP, config.ServerModeSTDIO:
			sc.Mode = config.ServerMode(mode)
		default:
			return fmt.Errorf("unsupported server mode: %s", mode)
		}
	}
	if fs.Changed("static-dir") {
		sc.StaticDir, _ = fs.GetString("static-dir")
	}
	if fs.Changed("port") {
		sc.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("host") {
		sc.Host, _ = fs.GetString("host")
	}
	return nil
}
