package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cacheStatsAsJSON bool
	cachePurgeMaxAge int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Response cache administration",
	Long:  `Commands for inspecting and maintaining the response cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counters",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [pattern]",
	Short: "Remove cached answers",
	Long: `Removes cached answers. With a pattern, only entries whose query text
contains the pattern (case-insensitive) are removed. Without one, the whole
cache is cleared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cached answers older than a cutoff",
	RunE:  runCachePurge,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheStatsAsJSON, "json", false, "output stats as JSON")
	cachePurgeCmd.Flags().IntVar(&cachePurgeMaxAge, "max-age", 3600, "age cutoff in seconds")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if cacheAdmin == nil {
		return errors.New("cache not configured")
	}

	stats := cacheAdmin.Stats()

	if cacheStatsAsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Entries:           %d / %d\n", stats.Size, stats.MaxSize)
	cmd.Printf("Queries:           %d\n", stats.TotalQueries)
	cmd.Printf("Hits:              %d\n", stats.Hits)
	cmd.Printf("Misses:            %d\n", stats.Misses)
	cmd.Printf("Hit rate:          %.1f%%\n", stats.HitRate()*100)
	cmd.Printf("Semantic matching: %t\n", stats.SemanticMatching)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if cacheAdmin == nil {
		return errors.New("cache not configured")
	}

	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}

	removed := cacheAdmin.Invalidate(cmd.Context(), pattern)
	if pattern == "" {
		cmd.Printf("Cleared %d cached answers.\n", removed)
	} else {
		cmd.Printf("Removed %d cached answers matching %q.\n", removed, pattern)
	}
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	if cacheAdmin == nil {
		return errors.New("cache not configured")
	}

	removed := cacheAdmin.PurgeExpired(cmd.Context(), cachePurgeMaxAge)
	cmd.Printf("Purged %d cached answers older than %ds.\n", removed, cachePurgeMaxAge)
	return nil
}
