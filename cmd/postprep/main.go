package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"
	"postprep-cli/internal/tui"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

type runtime struct {
	cfg     app.Config
	logger  *app.Logger
	session *app.Session
	client  *api.Client
}

// setup builds the shared client/session pair every command uses. The TUI
// and the headless subcommands differ only in what they wire on top.
func setup(configPath string) (*runtime, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(cfg.StorageDir, "postprep.log")
	}
	logger := app.NewFileLogger(logPath)

	client, err := api.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	session := app.NewSession(cfg.StorageDir, logger)
	session.SetInvalidator(client.Logout)

	return &runtime{cfg: cfg, logger: logger, session: session, client: client}, nil
}

// setupHeadless hydrates synchronously and wires expiry to a plain local
// clear, since there is no view to redirect.
func setupHeadless(configPath string) (*runtime, error) {
	rt, err := setup(configPath)
	if err != nil {
		return nil, err
	}
	rt.session.Hydrate()
	rt.client.SetSessionExpiredHandler(func() {
		rt.session.Clear()
		fmt.Fprintln(os.Stderr, "session expired, run 'postprep login' again")
	})
	return rt, nil
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "postprep",
		Short:   "PostPrep - terminal client for the PostPrep analysis backend",
		Long:    "PostPrep uploads documents (PDF or raw text) for AI analysis and browses the resulting summaries.\n\nRun without arguments for the interactive UI, or use the subcommands for scripted access.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(configPath)
			if err != nil {
				return err
			}
			return tui.Run(rt.session, rt.client)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(loginCmd(&configPath))
	root.AddCommand(logoutCmd(&configPath))
	root.AddCommand(uploadCmd(&configPath))
	root.AddCommand(articlesCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loginCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupHeadless(*configPath)
			if err != nil {
				return err
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				fmt.Fprint(cmd.OutOrStdout(), "email: ")
				line, _ := reader.ReadString('\n')
				email = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "password: ")
				line, _ := reader.ReadString('\n')
				password = strings.TrimRight(line, "\r\n")
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			user, err := rt.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := rt.session.Login(user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", user.DisplayName(), user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func logoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupHeadless(*configPath)
			if err != nil {
				return err
			}
			rt.session.Logout(cmd.Context())
			rt.client.ClearCredentials()
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func uploadCmd(configPath *string) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "upload [file.pdf]",
		Short: "Upload a PDF, or raw text from stdin with --text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupHeadless(*configPath)
			if err != nil {
				return err
			}
			if !rt.session.IsAuthenticated() {
				return fmt.Errorf("not signed in, run 'postprep login' first")
			}

			var article app.Article
			if text {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content := strings.TrimSpace(string(data))
				if content == "" {
					return fmt.Errorf("no text on stdin")
				}
				article, err = rt.client.UploadText(cmd.Context(), content)
				if err != nil {
					return err
				}
			} else {
				if len(args) != 1 {
					return fmt.Errorf("a PDF path is required (or use --text)")
				}
				article, err = rt.client.UploadPDF(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			printArticle(cmd.OutOrStdout(), article)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "read raw text from stdin instead of a PDF")
	return cmd
}

func articlesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "List your processed articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupHeadless(*configPath)
			if err != nil {
				return err
			}
			if !rt.session.IsAuthenticated() {
				return fmt.Errorf("not signed in, run 'postprep login' first")
			}

			items, err := rt.client.MyArticles(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no articles yet")
				return nil
			}
			for _, a := range items {
				title := a.Title
				if title == "" {
					title = "Untitled Document"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-10s  %s\n", a.ID, a.Status, title)
			}
			return nil
		},
	}
}

func printArticle(w io.Writer, a app.Article) {
	fmt.Fprintf(w, "id:      %s\n", a.ID)
	fmt.Fprintf(w, "status:  %s\n", a.Status)
	fmt.Fprintf(w, "title:   %s\n", a.BestTitle())
	if a.Output == nil {
		fmt.Fprintln(w, "analysis pending; run 'postprep articles' later")
		return
	}
	if a.Output.Summary != "" {
		fmt.Fprintf(w, "summary: %s\n", a.Output.Summary)
	}
	if len(a.Output.Keywords) > 0 {
		fmt.Fprintf(w, "keywords: %s\n", strings.Join(a.Output.Keywords, ", "))
	}
	if a.Output.SEOTitle != "" {
		fmt.Fprintf(w, "seo title: %s\n", a.Output.SEOTitle)
	}
	if len(a.Output.Categories) > 0 {
		fmt.Fprintf(w, "categories: %s\n", strings.Join(a.Output.Categories, ", "))
	}
}
