package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/core/services"
)

var (
	askLang    string
	askNoCache bool
	askJSON    bool
	askSession string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the programme corpus",
	Long: `Answers a single question about the university's degree programmes.
Relevant programme records are retrieved by embedding similarity and handed
to the configured LLM. Repeated and near-identical questions are answered
from the response cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askLang, "lang", "l", "", "answer language (en, de; default from config)")
	askCmd.Flags().BoolVar(&askNoCache, "no-cache", false, "bypass the response cache")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().StringVar(&askSession, "session", "", "append the exchange to a saved session ('new' to create one)")
	rootCmd.AddCommand(askCmd)
}

// askView is the JSON output shape of the ask command.
type askView struct {
	Answer    string   `json:"answer"`
	Source    string   `json:"source"`
	Programs  []string `json:"programs,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
	SessionID string   `json:"session_id,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]

	assistant := assistantService
	if assistant == nil {
		return errors.New("assistant service not configured")
	}
	if askNoCache && searchService != nil {
		assistant = services.NewAssistantService(searchService, nil, llmService, convContext, maxRetrieved())
	}

	language := askLang
	if language == "" {
		language = defaultLanguage()
	}

	answer, err := assistant.Ask(cmd.Context(), query, language)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	sessionID, err := appendToSession(cmd, query, answer.Text, language)
	if err != nil {
		return err
	}

	if askJSON {
		view := askView{
			Answer:    answer.Text,
			Source:    string(answer.Source),
			ElapsedMS: answer.Elapsed.Milliseconds(),
			SessionID: sessionID,
		}
		for i := range answer.Programs {
			view.Programs = append(view.Programs, answer.Programs[i].Code)
		}
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if answer.Source != domain.SourceGenerated {
		cmd.Printf("\n[%s, %dms]\n", answer.Source, answer.Elapsed.Milliseconds())
	}
	if sessionID != "" {
		cmd.Printf("Session: %s\n", sessionID)
	}

	return nil
}

// appendToSession records the exchange in the named session. Returns the
// session ID, or "" when no session was requested.
func appendToSession(cmd *cobra.Command, query, answer, language string) (string, error) {
	if askSession == "" {
		return "", nil
	}
	if sessionStore == nil {
		return "", errors.New("session store not configured")
	}

	ctx := cmd.Context()

	sess, err := loadOrCreateSession(cmd)
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess.Turns = append(sess.Turns,
		domain.Turn{Role: domain.RoleUser, Content: query, Language: language, Timestamp: now},
		domain.Turn{Role: domain.RoleAssistant, Content: answer, Language: language, Timestamp: now},
	)

	if err := sessionStore.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return sess.ID, nil
}

func loadOrCreateSession(cmd *cobra.Command) (*driven.Session, error) {
	ctx := cmd.Context()
	if askSession == "new" {
		sess, err := sessionStore.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		return sess, nil
	}

	sess, err := sessionStore.Get(ctx, askSession)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", askSession, err)
	}
	return sess, nil
}

// defaultLanguage resolves the answer language from config, falling back to
// English.
func defaultLanguage() string {
	if cfg != nil && cfg.Language != "" {
		return cfg.Language
	}
	return "en"
}

// maxRetrieved resolves the retrieval cap from config.
func maxRetrieved() int {
	if cfg != nil {
		return cfg.Retrieval.MaxResults
	}
	return 0
}
