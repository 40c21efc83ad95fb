// Command docvault ingests a folder of documents into a local,
// full-text-searchable store, converting each file to Markdown through
// the format-appropriate handler (spec.md §1, §6).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/docvault/internal/config"
	"github.com/standardbeagle/docvault/internal/convert"
	"github.com/standardbeagle/docvault/internal/convert/image"
	"github.com/standardbeagle/docvault/internal/events"
	"github.com/standardbeagle/docvault/internal/ingest"
	"github.com/standardbeagle/docvault/internal/session"
	"github.com/standardbeagle/docvault/internal/store"
	"github.com/standardbeagle/docvault/internal/types"
	"github.com/standardbeagle/docvault/internal/version"
	"github.com/standardbeagle/docvault/pkg/pathutil"
)

// app wires every long-lived collaborator the CLI commands share.
type app struct {
	cfg         *config.Config
	coordinator *ingest.Coordinator
	sessions    *session.Registry
	bus         *events.Bus
	docs        *store.DocumentStore
	closeDB     func() error
}

func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", absRoot, err)
	}
	cfg.Project.Root = absRoot

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}

	validator := config.NewValidator()
	if err := validator.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildApp(c *cli.Context) (*app, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Project.Root, ".docvault.sqlite")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	docs := store.NewDocumentStore(db)
	ingestState := store.NewIngestStateStore(db)
	registry := buildRegistry(cfg)
	sessions := session.NewRegistry(cfg.Runtime.SessionHistoryCap, cfg.Runtime.SessionGraceSeconds)
	bus := events.NewBus(cfg.Runtime.SessionHistoryCap)
	coordinator := ingest.NewCoordinator(cfg, registry, docs, ingestState, sessions, bus)

	return &app{
		cfg:         cfg,
		coordinator: coordinator,
		sessions:    sessions,
		bus:         bus,
		docs:        docs,
		closeDB:     db.Close,
	}, nil
}

func buildRegistry(cfg *config.Config) *convert.Registry {
	reg := convert.NewRegistry()
	reg.Register(types.ConversionDirect, convert.NewMarkdownHandler(), cfg.Converters.NativeMarkdown...)
	reg.Register(types.ConversionTextToMD, convert.NewTextHandler(), cfg.Converters.PlainText...)
	reg.Register(types.ConversionCodeToMD, convert.NewCodeHandler(), cfg.Converters.Code...)
	reg.Register(types.ConversionStructuredToMD, convert.NewStructuredHandler(), cfg.Converters.Structured...)
	reg.Register(types.ConversionXMindToMD, convert.NewXMindHandler(), cfg.Converters.XMind...)
	reg.Register(types.ConversionVideoMetadata, convert.NewVideoHandler(), cfg.Converters.Video...)
	reg.Register(types.ConversionHTMLToMD, convert.NewHTMLHandler(), cfg.Converters.HTML...)
	reg.Register(types.ConversionDrawioToMD, convert.NewDiagramHandler(), cfg.Converters.Diagram...)

	chain := buildImageChain(cfg)
	reg.Register(types.ConversionImageToMD, convert.NewImageHandler(chain, cfg.Image.EnableFrontMatter), cfg.Converters.Image...)

	return reg
}

func buildImageChain(cfg *config.Config) *image.Chain {
	timeout := time.Duration(cfg.Image.LLMTimeoutMs) * time.Millisecond

	providers := make([]image.Provider, 0, len(cfg.Image.ProviderChain))
	for _, name := range cfg.Image.ProviderChain {
		switch name {
		case "local_ocr":
			providers = append(providers, image.NewLocalProvider(cfg.Image.TesseractLang))
		default:
			endpoint := os.Getenv("DOCVAULT_" + name + "_ENDPOINT")
			apiKey := os.Getenv("DOCVAULT_" + name + "_API_KEY")
			model := os.Getenv("DOCVAULT_" + name + "_MODEL")
			if endpoint != "" {
				providers = append(providers, image.NewRemoteProvider(name, endpoint, apiKey, model, timeout))
			}
		}
	}
	return image.NewChain(providers...)
}

func main() {
	app := &cli.App{
		Name:    "docvault",
		Usage:   "Local document ingestion and full-text search",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Folder to ingest", Value: "."},
			&cli.StringFlag{Name: "db", Usage: "Path to the sqlite store (defaults to <root>/.docvault.sqlite)"},
			&cli.StringSliceFlag{Name: "include", Usage: "Only ingest these extensions"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Additional doublestar exclusion patterns"},
		},
		Commands: []*cli.Command{
			startCommand(),
			cancelCommand(),
			sessionsCommand(),
			historyCommand(),
			retryCommand(),
			orphansCommand(),
			searchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "docvault:", err)
		os.Exit(1)
	}
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start an ingestion session over --root and stream its progress",
		Flags: []cli.Flag{
			&cli.TimestampFlag{Name: "date-from", Layout: time.RFC3339, Usage: "Only ingest files modified at or after this time (defaults to the scope's persisted cursor)"},
			&cli.TimestampFlag{Name: "date-to", Layout: time.RFC3339, Usage: "Only ingest files modified at or before this time"},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var dateFrom, dateTo time.Time
			if v := c.Timestamp("date-from"); v != nil {
				dateFrom = *v
			}
			if v := c.Timestamp("date-to"); v != nil {
				dateTo = *v
			}

			sess := a.coordinator.Start(ctx, a.cfg.Project.Root, dateFrom, dateTo)
			fmt.Printf("session %s started for %s\n", sess.ID, a.cfg.Project.Root)

			sub := a.bus.Subscribe(sess.ID)
			for ev := range sub {
				data, _ := json.Marshal(ev)
				fmt.Println(string(data))
			}
			return nil
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Request cancellation of a running session",
		ArgsUsage: "<session-id>",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("session id required")
			}
			if !a.sessions.RequestCancel(id) {
				return fmt.Errorf("session %s is not active", id)
			}
			fmt.Printf("cancel requested for session %s\n", id)
			return nil
		},
	}
}

func sessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List active session IDs",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			for _, id := range a.sessions.ActiveIDs() {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the recorded event history for a session",
		ArgsUsage: "<session-id>",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("session id required")
			}
			for _, ev := range a.bus.History(id) {
				data, _ := json.Marshal(ev)
				fmt.Println(string(data))
			}
			return nil
		},
	}
}

func retryCommand() *cli.Command {
	return &cli.Command{
		Name:      "retry",
		Usage:     "Retry converting a single previously failed document",
		ArgsUsage: "<normalized-path>",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("document path required")
			}
			if err := a.coordinator.RetryDocument(context.Background(), path); err != nil {
				return err
			}
			fmt.Printf("retried %s\n", path)
			return nil
		},
	}
}

func orphansCommand() *cli.Command {
	return &cli.Command{
		Name:  "orphans",
		Usage: "List documents whose file_path is no longer under --folder",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder"},
			&cli.StringFlag{Name: "file-type"},
			&cli.StringFlag{Name: "keyword"},
			&cli.IntFlag{Name: "limit", Value: 50},
			&cli.IntFlag{Name: "offset", Value: 0},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			folder := c.String("folder")
			docs, err := a.docs.ListOrphans(folder, c.String("file-type"), c.String("keyword"),
				store.Page{Limit: c.Int("limit"), Offset: c.Int("offset")})
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Printf("%s\t%s\n", pathutil.ToRelative(d.FilePath, a.cfg.Project.Root), d.ErrorMessage)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search over converted document content",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.closeDB()

			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("search query required")
			}
			docs, err := a.docs.SearchContent(query, c.Int("limit"))
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Printf("%s (%s)\n", pathutil.ToRelative(d.FilePath, a.cfg.Project.Root), d.Status)
			}
			return nil
		},
	}
}
