// The mdstore command manages a Maildir-format message store: it
// delivers messages crash-safely, lists and filters them by flag,
// composes drafts, keeps filename-encoded sizes honest, and maintains
// a sqlite index of listings.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/d-lightsey/mdstore/internal/config"
	"github.com/d-lightsey/mdstore/internal/draft"
	"github.com/d-lightsey/mdstore/internal/homedir"
	"github.com/d-lightsey/mdstore/internal/index"
	"github.com/d-lightsey/mdstore/internal/logger"
	"github.com/d-lightsey/mdstore/internal/maildir"
	"github.com/d-lightsey/mdstore/internal/persist"

	_ "github.com/mattn/go-sqlite3"
)

var (
	flagConfig  = flag.String("config", "", "path to the config file")
	flagFolder  = flag.String("folder", "", "folder to operate on (empty is the inbox)")
	flagFlags   = flag.String("flags", "", `flags required by list, e.g. "DS"`)
	flagFrom    = flag.String("from", "", "draft sender address")
	flagTo      = flag.String("to", "", "comma-separated draft recipients")
	flagSubject = flag.String("subject", "", "draft subject")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"usage: mdstore [flags] <command> [args]\n\n"+
			"commands:\n"+
			"  init                create the folder's maildir structure\n"+
			"  deliver             deliver a message from stdin into new/\n"+
			"  list                list messages, newest first\n"+
			"  headers <path>      print a message's header block\n"+
			"  draft               compose a draft from stdin into cur/\n"+
			"  mark <path> [flags] rewrite a message's flags, moving it into cur/\n"+
			"  reconcile <path>    correct a filename's encoded size\n"+
			"  refresh             rebuild the sqlite index from disk\n"+
			"  sweep               correct encoded sizes across all folders\n"+
			"  watch               keep the index refreshed, reloading config on change\n\n"+
			"flags:\n")
	flag.PrintDefaults()
}

func folderMaildir(cfg *config.Config) *maildir.Maildir {
	return maildir.New(index.FolderPath(cfg.MaildirRoot, *flagFolder))
}

// watchInterval bounds how stale the index may get in watch mode when
// the config file never changes.
const watchInterval = 5 * time.Minute

func run(ctx context.Context, cfgPath string, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "init":
		return errors.Wrap(folderMaildir(cfg).Create(), "unable to create maildir")

	case "deliver":
		name := maildir.Generate(maildir.FlagSet{})
		path, err := folderMaildir(cfg).Deliver(os.Stdin, maildir.SubdirNew, name)
		if err != nil {
			return errors.Wrap(err, "unable to deliver message")
		}
		fmt.Println(maildir.ReconcileSize(path))
		return nil

	case "list":
		filter := maildir.FlagFilter{}
		for _, c := range *flagFlags {
			filter[c] = true
		}
		entries, err := folderMaildir(cfg).List(filter)
		if err != nil {
			return errors.Wrap(err, "unable to list messages")
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%d\t%s\t%s\n",
				e.Subdir,
				time.Unix(e.Time, 0).UTC().Format(time.RFC3339),
				e.Size,
				e.Flags,
				filepath.Base(e.Path))
		}
		return nil

	case "headers":
		if len(args) != 1 {
			return errors.New("headers requires a message path")
		}
		headers, err := maildir.ReadHeader(args[0])
		if err != nil {
			return err
		}
		names := make([]string, 0, len(headers))
		for name := range headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, headers[name])
		}
		return nil

	case "draft":
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "unable to read draft body")
		}
		d := draft.Draft{
			From:    *flagFrom,
			Subject: *flagSubject,
			Body:    string(body),
		}
		if *flagTo != "" {
			d.To = strings.Split(*flagTo, ",")
		}
		path, err := draft.Save(folderMaildir(cfg), d)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "mark":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("mark requires a message path and optional flag characters")
		}
		flags := maildir.FlagSet{}
		if len(args) == 2 {
			flags = maildir.ParseFlags(args[1])
		}
		path, err := folderMaildir(cfg).SetFlags(args[0], flags)
		if err != nil {
			return errors.Wrap(err, "unable to rewrite flags")
		}
		fmt.Println(path)
		return nil

	case "reconcile":
		if len(args) != 1 {
			return errors.New("reconcile requires a message path")
		}
		fmt.Println(maildir.ReconcileSize(args[0]))
		return nil

	case "refresh":
		db, err := persist.Open(ctx, cfg.Database)
		if err != nil {
			return errors.Wrap(err, "unable to initialize database")
		}
		defer db.Close()
		return index.Refresh(ctx, db, cfg.MaildirRoot, cfg.Folders)

	case "sweep":
		n, err := index.Sweep(ctx, cfg.MaildirRoot, cfg.Folders)
		if err != nil {
			return err
		}
		fmt.Printf("corrected %d filenames\n", n)
		return nil

	case "watch":
		changes := make(chan *config.Config, 1)
		watched, err := config.LoadAndWatch(cfgPath, func(fresh *config.Config) {
			select {
			case changes <- fresh:
			default:
			}
		})
		if err != nil {
			return errors.Wrap(err, "unable to watch config")
		}
		cfg = watched
		for {
			db, err := persist.Open(ctx, cfg.Database)
			if err != nil {
				return errors.Wrap(err, "unable to initialize database")
			}
			err = index.Refresh(ctx, db, cfg.MaildirRoot, cfg.Folders)
			db.Close()
			if err != nil {
				logger.Error().Err(err).Msg("index refresh failed")
			}
			select {
			case <-ctx.Done():
				return nil
			case cfg = <-changes:
				logger.Info().Msg("configuration reloaded")
			case <-time.After(watchInterval):
			}
		}
	}

	return errors.Errorf("unknown command %q", cmd)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	path := *flagConfig
	if path == "" {
		path = filepath.Join(homedir.Get(), ".mdstore.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed: %v\n", err)
	}
	logger.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, path, cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("Failed: %v\n", err)
	}
}
