package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marksrv/marksrv/internal/config"
	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/exporter"
	"github.com/marksrv/marksrv/internal/groups"
	"github.com/marksrv/marksrv/internal/importer"
	"github.com/marksrv/marksrv/internal/server"
	"github.com/marksrv/marksrv/internal/service"
	"github.com/marksrv/marksrv/internal/storage"
	"github.com/marksrv/marksrv/internal/tree"
)

func main() {
	configPath := os.Getenv("MARKSRV_CONFIG")

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "import":
			if len(os.Args) < 4 {
				fmt.Fprintf(os.Stderr, "Usage: marksrv import <user> <file.html>\n")
				os.Exit(1)
			}
			runImport(configPath, os.Args[2], os.Args[3])
			return
		case "export":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: marksrv export <user> [path]\n")
				os.Exit(1)
			}
			var outputPath string
			if len(os.Args) >= 4 {
				outputPath = os.Args[3]
			}
			runExport(configPath, os.Args[2], outputPath)
			return
		case "serve":
			// fall through to the server below
		default:
			fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	runServe(configPath)
}

func printHelp() {
	help := `marksrv - shared bookmark folder server

Usage:
  marksrv [serve]               Run the HTTP server
  marksrv import <user> <file>  Import bookmarks from HTML into the user's root
  marksrv export <user> [path]  Export the user's bookmarks to HTML
  marksrv help                  Show this help

Configuration is read from marksrv.yaml (or $MARKSRV_CONFIG) and
MARKSRV_* environment variables.
`
	fmt.Print(help)
}

// setup loads config, configures logging and opens the store.
func setup(configPath string) (*config.Config, *storage.Store) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	return cfg, store
}

func buildService(cfg *config.Config, store *storage.Store) (*service.FolderService, *exporter.Exporter) {
	mapper := tree.New(store)
	imp := importer.New(store, mapper, cfg.Limits.MaxBookmarksPerUser)
	svc := service.New(store, mapper, groups.StaticDirectory(cfg.Groups), events.LogDispatcher{}, imp)
	return svc, exporter.New(store, mapper)
}

func runServe(configPath string) {
	cfg, store := setup(configPath)
	defer store.Close()

	svc, exp := buildService(cfg, store)
	srv := server.New(svc, exp)

	log.Info().Str("listen", cfg.Listen).Msg("marksrv listening")
	if err := http.ListenAndServe(cfg.Listen, srv); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func runImport(configPath, user, path string) {
	cfg, store := setup(configPath)
	defer store.Close()
	svc, _ := buildService(cfg, store)

	ctx := context.Background()
	root, err := svc.GetRootFolder(ctx, user)
	if err != nil {
		// First import provisions the user.
		root, err = svc.CreateRootFolder(ctx, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating root folder: %v\n", err)
			os.Exit(1)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	result, err := svc.ImportFile(ctx, user, file, root.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d bookmarks in %d folders\n", result.ImportedBookmarks, result.ImportedFolders)
	for _, e := range result.Errors {
		fmt.Printf("  skipped: %s\n", e)
	}
}

func runExport(configPath, user, outputPath string) {
	cfg, store := setup(configPath)
	defer store.Close()
	_, exp := buildService(cfg, store)

	doc, err := exp.Export(context.Background(), user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	if outputPath == "" {
		fmt.Print(doc)
		return
	}
	if err := os.WriteFile(outputPath, []byte(doc), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("Exported bookmarks to %s\n", outputPath)
}
