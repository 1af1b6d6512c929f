package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusware/advisor/internal/core/domain"
)

var (
	programsLevel    string
	programsLanguage string
	programsJSON     bool
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Programme corpus commands",
	Long:  `Commands for inspecting and reloading the programme corpus.`,
}

var programsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed programmes",
	RunE:  runProgramsList,
}

var programsShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show one programme record in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgramsShow,
}

var programsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the corpus from disk and rebuild the index",
	RunE:  runProgramsReload,
}

func init() {
	programsListCmd.Flags().StringVar(&programsLevel, "level", "", "filter by degree level (bachelor, master, doctoral)")
	programsListCmd.Flags().StringVar(&programsLanguage, "language", "", "filter by language of instruction")
	programsListCmd.Flags().BoolVar(&programsJSON, "json", false, "output programmes as JSON")
	programsCmd.AddCommand(programsListCmd)
	programsCmd.AddCommand(programsShowCmd)
	programsCmd.AddCommand(programsReloadCmd)
	rootCmd.AddCommand(programsCmd)
}

func runProgramsList(cmd *cobra.Command, _ []string) error {
	if programCatalog == nil {
		return errors.New("programme catalog not configured")
	}

	var programs []domain.Program
	switch {
	case programsLevel != "":
		programs = programCatalog.ByLevel(programsLevel)
	case programsLanguage != "":
		programs = programCatalog.ByLanguage(programsLanguage)
	default:
		programs = programCatalog.Programs()
	}

	if programsJSON {
		data, err := json.MarshalIndent(programs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal programs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(programs) == 0 {
		cmd.Println("No programmes loaded.")
		return nil
	}

	for i := range programs {
		p := programs[i]
		cmd.Printf("  %-16s %s (%s, %s)\n", p.Code, p.Title, p.DegreeLevel, p.LanguageOfInstruction)
	}
	cmd.Println()
	cmd.Printf("%d programmes.\n", len(programs))
	return nil
}

func runProgramsShow(cmd *cobra.Command, args []string) error {
	if programCatalog == nil {
		return errors.New("programme catalog not configured")
	}

	program, err := programCatalog.ByCode(args[0])
	if err != nil {
		return err
	}

	cmd.Println(program.ContextString())
	return nil
}

func runProgramsReload(cmd *cobra.Command, _ []string) error {
	if corpusLoader == nil || programIndex == nil {
		return errors.New("corpus loader not configured")
	}

	programs, err := corpusLoader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("reloading corpus: %w", err)
	}

	if err := programIndex.Build(cmd.Context(), programs); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	cmd.Printf("Reloaded %d programmes from %s.\n", programIndex.Count(), corpusLoader.Dir())
	if programIndex.Degraded() {
		cmd.Println("Note: embeddings unavailable, index is in degraded substring mode.")
	}
	return nil
}
