package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"whisperxsubs/internal/language"
	"whisperxsubs/internal/transcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the translation cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCache(cmd *cobra.Command, ctx *commandContext) (*transcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return transcache.Open(cmd.Context(), cfg.CachePath())
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show translation cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", stats.Path)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Hits:    %d\n", stats.Hits)
			if stats.Entries == 0 {
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			fmt.Fprintf(out, "Range:   %s to %s\n", stats.Oldest.Local().Format(stampLayout), stats.Newest.Local().Format(stampLayout))

			rows := make([][]string, 0, len(stats.Languages))
			for _, lang := range stats.Languages {
				rows = append(rows, []string{
					lang.Target,
					language.DisplayName(lang.Target),
					strconv.FormatInt(lang.Entries, 10),
					strconv.FormatInt(lang.Hits, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Target", "Language", "Entries", "Hits"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var target string
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached translations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target = strings.TrimSpace(target)
			if target == "" && !all {
				return fmt.Errorf("specify --lang <code> or --all")
			}
			if target != "" {
				if code := language.Canonical(target); code != "" {
					target = code
				}
			}

			store, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context(), target)
			if err != nil {
				return err
			}
			scope := "all languages"
			if target != "" {
				scope = target
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached translations (%s)\n", removed, scope)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "lang", "", "Only clear translations into this language")
	cmd.Flags().BoolVar(&all, "all", false, "Clear every cached translation")
	return cmd
}
