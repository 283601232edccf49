package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/panekit/ftpdeck/internal/bookmark"
	"github.com/panekit/ftpdeck/internal/config"
	"github.com/panekit/ftpdeck/internal/ftpx"
	"github.com/panekit/ftpdeck/internal/pool"
	"github.com/panekit/ftpdeck/internal/version"
	"github.com/panekit/ftpdeck/internal/vfs"
)

const usage = `usage: ftpdeck [-config <path>] <command> [args]

commands:
  ls <url>                 list a directory
  stat <url>               show metadata for one path
  mkdir <url>              create a directory
  rm <url>                 delete a file
  rmdir <url>              delete an empty directory
  mv <src-url> <dst-url>   rename on the same server
  cp <src-url> <dst-url>   copy one file between FTP locations
  get <url>                download a file to stdout
  put <file> <url>         upload a local file
  connections              list open connections
  close <base-url>         close connections to one server
  close-all                close every connection
  bookmarks                list bookmark aliases
  bookmark-add <alias> <target> [path]   add a bookmark
  bookmark-rm <alias>      remove a bookmark
  history                  list visited URLs, newest first
`

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *showVersion {
		fmt.Println("ftpdeck", version.String())
		return
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ftpdeck:", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create context with cancellation on shutdown signals.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger, flag.Args()); err != nil {
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	bookmarks, err := bookmark.Load(cfg.Files.Bookmarks)
	if err != nil {
		return err
	}
	history, err := bookmark.LoadHistory(cfg.Files.History)
	if err != nil {
		return err
	}

	poolCfg := pool.Config{
		Capacity:            cfg.Pool.Capacity,
		IdleTimeout:         cfg.Pool.IdleTimeout,
		HealthCheckInterval: cfg.Pool.HealthCheckInterval,
		StatCacheSize:       cfg.Pool.StatCacheSize,
		FTP: ftpx.Options{
			DialTimeout:   cfg.FTP.DialTimeout,
			InsecureTLS:   cfg.FTP.InsecureTLS,
			StatCacheSize: ftpx.DefaultStatCacheSize,
		},
		Aliases: bookmarks.Aliases,
	}
	p := pool.NewManager(poolCfg, logger)
	defer p.CloseAll()

	fs := vfs.New(p, logger)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ls":
		return cmdLs(ctx, fs, history, rest)
	case "stat":
		return cmdStat(ctx, fs, rest)
	case "mkdir":
		return oneURL(rest, func(url string) error { return fs.Mkdir(ctx, url) })
	case "rm":
		return oneURL(rest, func(url string) error { return fs.Remove(ctx, url) })
	case "rmdir":
		return oneURL(rest, func(url string) error { return fs.RemoveDir(ctx, url) })
	case "mv":
		return twoURLs(rest, func(src, dst string) error { return fs.Rename(ctx, src, dst) })
	case "cp":
		return twoURLs(rest, func(src, dst string) error { return fs.Copy(ctx, src, dst) })
	case "get":
		return oneURL(rest, func(url string) error { return fs.Download(ctx, url, os.Stdout) })
	case "put":
		return cmdPut(ctx, fs, rest)
	case "connections":
		return cmdConnections(p)
	case "close":
		return oneURL(rest, func(base string) error {
			p.CloseByBaseURL(base)
			return nil
		})
	case "close-all":
		p.CloseAll()
		return nil
	case "bookmarks":
		return cmdBookmarks(bookmarks)
	case "bookmark-add":
		return cmdBookmarkAdd(bookmarks, rest)
	case "bookmark-rm":
		return cmdBookmarkRm(bookmarks, rest)
	case "history":
		return cmdHistory(history)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func oneURL(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one URL argument, got %d", len(args))
	}
	return fn(args[0])
}

func twoURLs(args []string, fn func(string, string) error) error {
	if len(args) != 2 {
		return fmt.Errorf("expected source and destination URLs, got %d args", len(args))
	}
	return fn(args[0], args[1])
}

func cmdLs(ctx context.Context, fs *vfs.FS, history *bookmark.History, args []string) error {
	return oneURL(args, func(url string) error {
		entries, err := fs.List(ctx, url)
		if err != nil {
			return err
		}

		history.Touch(url)
		if err := history.Save(); err != nil {
			slog.Warn("saving history", "error", err)
		}

		for _, e := range entries {
			fmt.Println(formatEntry(e))
		}
		return nil
	})
}

func cmdStat(ctx context.Context, fs *vfs.FS, args []string) error {
	return oneURL(args, func(url string) error {
		e, err := fs.Stat(ctx, url)
		if err != nil {
			return err
		}
		fmt.Println(formatEntry(e))
		return nil
	})
}

func cmdPut(ctx context.Context, fs *vfs.FS, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected local file and URL, got %d args", len(args))
	}

	var r io.ReadCloser
	if args[0] == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return fs.Upload(ctx, args[1], r)
}

func cmdConnections(p *pool.Manager) error {
	open := p.OpenConnections()
	if len(open) == 0 {
		fmt.Println("no open connections")
		return nil
	}
	for _, oc := range open {
		fmt.Printf("%s\t%s\n", oc.BaseURL, oc.LastVisited)
	}
	return nil
}

func cmdBookmarks(s *bookmark.Store) error {
	for _, alias := range s.Names() {
		e, _ := s.Get(alias)
		fmt.Printf("%s\t%s%s\n", alias, e.Target, e.DefaultPath)
	}
	return nil
}

func cmdBookmarkAdd(s *bookmark.Store, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("expected alias, target and optional path, got %d args", len(args))
	}
	e := bookmark.Entry{Target: args[1], DefaultPath: "/"}
	if len(args) == 3 {
		e.DefaultPath = args[2]
	}
	s.Set(args[0], e)
	return s.Save()
}

func cmdBookmarkRm(s *bookmark.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one alias argument, got %d", len(args))
	}
	if !s.Remove(args[0]) {
		return fmt.Errorf("no bookmark %q", args[0])
	}
	return s.Save()
}

func cmdHistory(h *bookmark.History) error {
	for _, url := range h.Recent() {
		fmt.Println(url)
	}
	return nil
}

func formatEntry(e ftpx.Entry) string {
	kind := "-"
	switch {
	case e.Dir:
		kind = "d"
	case e.Link:
		kind = "l"
	}
	name := e.Name
	if e.Link && e.Target != "" {
		name += " -> " + e.Target
	}
	return fmt.Sprintf("%s %10d %s %s", kind, e.Size, e.Time.Format("2006-01-02 15:04"), name)
}
