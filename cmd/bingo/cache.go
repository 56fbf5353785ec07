package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/cache"
	"github.com/ZaguanLabs/bingo/config"
)

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage session caches",
		Long: `Inspect and manage the per language pair session caches.

Caches are named after their pair, for example "en-de" or "auto-detect-fr".`,
	}

	cmd.AddCommand(
		a.newCacheListCmd(),
		a.newCacheShowCmd(),
		a.newCacheClearCmd(),
		a.newCacheExportCmd(),
		a.newCacheImportCmd(),
	)
	return cmd
}

// cacheNames lists the caches stored in the cache directory.
func (a *app) cacheNames() ([]string, error) {
	if a.cfg.Cache.Backend != config.BackendFile {
		return nil, fmt.Errorf("listing caches needs the file backend, not %q", a.cfg.Cache.Backend)
	}

	matches, err := filepath.Glob(filepath.Join(a.cfg.Cache.Dir, "*.json"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// withCache opens a cache, runs fn and closes it, saving pending changes.
func (a *app) withCache(name string, fn func(c *cache.PersistentCache) error) error {
	c, err := a.openCache(name)
	if err != nil {
		return err
	}
	ferr := fn(c)
	return errors.Join(ferr, c.Close())
}

func (a *app) newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.cacheNames()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(a.stdout, "no caches in %s\n", a.cfg.Cache.Dir)
				return nil
			}

			for _, name := range names {
				err := a.withCache(name, func(c *cache.PersistentCache) error {
					fmt.Fprintf(a.stdout, "%-20s %2d keys  %s\n", name, c.Len(), describeSession(c))
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// describeSession summarizes the session held in a cache.
func describeSession(c *cache.PersistentCache) string {
	exp, ok := c.Expiry("token")
	if !ok {
		return "no session"
	}
	count, _ := c.GetInt("count")
	if exp.IsZero() {
		return fmt.Sprintf("session never expires, next request %d", count)
	}
	return fmt.Sprintf("session expires in %s, next request %d", time.Until(exp).Round(time.Second), count)
}

func (a *app) newCacheShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print the entries of a cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(args[0], func(c *cache.PersistentCache) error {
				for _, e := range c.Entries() {
					expires := "never"
					if !e.ExpireAt.IsZero() {
						expires = e.ExpireAt.Format(time.RFC3339)
					}
					fmt.Fprintf(a.stdout, "%-8s %-40s expires %s\n", e.Key, string(e.Value), expires)
				}
				return nil
			})
		},
	}
}

func (a *app) newCacheClearCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [name...]",
		Short: "Drop cached sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if all {
				var err error
				if names, err = a.cacheNames(); err != nil {
					return err
				}
			}
			if len(names) == 0 {
				return errors.New("name a cache or pass --all")
			}

			for _, name := range names {
				if err := a.withCache(name, func(c *cache.PersistentCache) error {
					return c.Clear()
				}); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "cleared %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear every cache in the cache directory")
	return cmd
}

func (a *app) newCacheExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a cache as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(args[0], func(c *cache.PersistentCache) error {
				meta := map[string]string{
					"backend": a.cfg.Cache.Backend,
					"bingo":   bingo.FullVersion(),
				}
				exp := cache.NewExporter(c)
				if output == "" || output == "-" {
					return exp.Export(a.stdout, meta)
				}
				if err := exp.ExportToFile(output, meta); err != nil {
					return err
				}
				fmt.Fprintf(a.stderr, "exported %s to %s\n", args[0], output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) newCacheImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <name> <file|->",
		Short: "Import entries from an exported cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(args[0], func(c *cache.PersistentCache) error {
				imp := cache.NewImporter(c)

				var res *cache.ImportResult
				var err error
				if args[1] == "-" {
					res, err = imp.Import(a.stdin)
				} else {
					res, err = imp.ImportFromFile(args[1])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "imported %d entries into %s (%d expired, %d failed)\n",
					res.Imported, args[0], res.Expired, res.Failed)
				return nil
			})
		},
	}
}
