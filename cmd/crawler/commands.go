package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"tululu/internal/library"
	"tululu/internal/logger"
	"tululu/internal/storage/books"
	"tululu/internal/storage/fails"
	"tululu/internal/storage/genres"
	"tululu/internal/storage/schema"
	"tululu/internal/tululu"
	"tululu/internal/types"
)

type commonFlags struct {
	destFolder string
	jsonPath   string
	skipImgs   bool
	skipTxt    bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.destFolder, "dest_folder", "books/", "Folder for downloaded texts, covers and "+library.FileName)
	cmd.Flags().StringVar(&f.jsonPath, "json_path", "", "Path of the aggregate JSON (default <dest_folder>/"+library.FileName+")")
	cmd.Flags().BoolVar(&f.skipImgs, "skip_imgs", false, "Do not download covers")
	cmd.Flags().BoolVar(&f.skipTxt, "skip_txt", false, "Do not download texts")
}

func (f *commonFlags) output() string {
	if f.jsonPath != "" {
		return f.jsonPath
	}

	return filepath.Join(f.destFolder, library.FileName)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "crawler",
		Short:        "crawler downloads books, covers and their metadata from tululu.org",
		SilenceUsage: true,
	}

	root.AddCommand(newBooksCmd(), newCategoryCmd())

	return root
}

func newBooksCmd() *cobra.Command {
	var flags commonFlags
	var startId, endId uint64

	cmd := &cobra.Command{
		Use:   "books --start_id <id> --end_id <id>",
		Short: "Downloads books by a range of ids, both ends included.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if startId == 0 || endId < startId {
				return fmt.Errorf("expected 0 < start_id <= end_id, got %d and %d", startId, endId)
			}

			return run(cmd.Context(), &flags, func(env *environment) ([]*types.Book, error) {
				p := tululu.RangePipeline{
					Books:    env.books,
					Consumer: env.consumer,
					Errors:   env.errors,
					Logger:   slog.Default(),
					Output:   flags.output(),
				}

				return p.Run(cmd.Context(), types.BookId(startId), types.BookId(endId))
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&startId, "start_id", 0, "First book id to download")
	cmd.Flags().Uint64Var(&endId, "end_id", 0, "Last book id to download")
	_ = cmd.MarkFlagRequired("start_id")
	_ = cmd.MarkFlagRequired("end_id")

	return cmd
}

func newCategoryCmd() *cobra.Command {
	var flags commonFlags
	var startPage, endPage, category uint64

	cmd := &cobra.Command{
		Use:   "category [--start_page <n>] [--end_page <n>]",
		Short: "Downloads every book listed on catalog pages start_page..end_page-1 of a category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if startPage == 0 || endPage <= startPage {
				return fmt.Errorf("expected 0 < start_page < end_page, got %d and %d", startPage, endPage)
			}

			return run(cmd.Context(), &flags, func(env *environment) ([]*types.Book, error) {
				p := tululu.CategoryPipeline{
					Fetcher:  env.fetcher,
					Books:    env.books,
					Base:     env.cfg.Base,
					Category: category,
					Retry:    env.books.Retry,
					Consumer: env.consumer,
					Errors:   env.errors,
					Logger:   slog.Default(),
					Output:   flags.output(),
				}

				return p.Run(cmd.Context(), startPage, endPage)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&startPage, "start_page", 700, "First catalog page")
	cmd.Flags().Uint64Var(&endPage, "end_page", 702, "Catalog page to stop at, not included")
	cmd.Flags().Uint64Var(&category, "category", 55, "Category id, the number in /l{category}/")

	return cmd
}

type environment struct {
	cfg      *config
	fetcher  *tululu.Fetcher
	books    *tululu.BookPipeline
	consumer tululu.Consumer
	errors   tululu.ErrorHandler
	fails    fails.Repository
	runId    uuid.UUID
}

func run(ctx context.Context, flags *commonFlags, crawl func(env *environment) ([]*types.Book, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	if err := os.MkdirAll(flags.destFolder, 0o755); err != nil {
		slog.Error("Failed to create destination folder: " + err.Error())
		return err
	}

	env, cleanup, err := newEnvironment(ctx, cfg, flags)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	defer cleanup()

	started := time.Now()
	bks, err := crawl(env)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Crawl failed: " + err.Error())
		return err
	}

	slog.Info(fmt.Sprintf("Downloaded %d books in %s", len(bks), time.Since(started).Round(time.Second)),
		slog.String("run_id", env.runId.String()))

	if env.fails != nil {
		fs, ferr := env.fails.GetByRun(context.Background(), env.runId)
		if ferr != nil {
			slog.Error("Failed to count recorded failures: " + ferr.Error())
		} else if len(fs) > 0 {
			slog.Warn(fmt.Sprintf("%d failures recorded", len(fs)), slog.String("run_id", env.runId.String()))
		}
	}

	fmt.Println("Results are stored in folder: " + flags.destFolder)

	return nil
}

func newEnvironment(ctx context.Context, cfg *config, flags *commonFlags) (*environment, func(), error) {
	fetcher := &tululu.Fetcher{
		Client: tululu.NewClient(cfg.HttpTimeout, slog.Default()),
		Logger: slog.Default(),
	}

	env := &environment{
		cfg:     cfg,
		fetcher: fetcher,
		books: &tululu.BookPipeline{
			Fetcher:    fetcher,
			Downloader: &tululu.Downloader{Fetcher: fetcher, Base: cfg.Base},
			Base:       cfg.Base,
			Retry:      tululu.RetryPolicy{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay},
			Options: tululu.BookOptions{
				DestFolder: flags.destFolder,
				SkipText:   flags.skipTxt,
				SkipImages: flags.skipImgs,
			},
			Logger: slog.Default(),
		},
		runId: uuid.New(),
	}

	consumers := tululu.MultiConsumer{&tululu.PrintingConsumer{Out: os.Stdout}}
	handlers := tululu.MultiHandler{&tululu.LoggingHandler{Logger: slog.Default()}}
	cleanup := func() {}

	if cfg.DatabaseUrl != "" {
		pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}

		pgCfg.ConnConfig.Tracer = logger.NewPGXTracer(slog.Default())

		pg, err := pgxpool.NewWithConfig(ctx, pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}

		if err := schema.Apply(ctx, pg); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}

		consumers = append(consumers, &tululu.StoringConsumer{
			Logger: slog.Default(),
			Books:  books.NewPGXRepository(pg, slog.Default()),
			Genres: genres.NewPGXRepository(pg, slog.Default()),
		})

		env.fails = fails.NewPGXRepository(pg, slog.Default())
		handlers = append(handlers, &tululu.StoringHandler{
			RunId:     env.runId,
			StartTime: time.Now(),
			Fails:     env.fails,
		})

		cleanup = pg.Close
	}

	env.consumer = consumers
	env.errors = handlers

	return env, cleanup, nil
}
