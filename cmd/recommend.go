package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hackmatch/internal/ai/gemini"
	"github.com/spigell/hackmatch/internal/filtering"
	"github.com/spigell/hackmatch/internal/hackathon"
	"github.com/spigell/hackmatch/internal/keywords"
	"github.com/spigell/hackmatch/internal/logger"
	"github.com/spigell/hackmatch/internal/matching"
	"github.com/spigell/hackmatch/internal/recommend"
	"github.com/spigell/hackmatch/internal/secrets"
	"github.com/spigell/hackmatch/internal/semantic"
	"github.com/spigell/hackmatch/internal/taxonomy"
)

const (
	PromptShow                = "Show recommendations"
	PromptDetails             = "Show details"
	PromptReportByCategories  = "Report by categories"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append all recommendations to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank hackathons against your skills",
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringSlice("skills", nil, "comma separated skills. Overrides the skills key")
	recommendCmd.Flags().Uint("user", 0, "read skills from the stored profile of this user id")
	recommendCmd.Flags().String("csv", "", "csv file with hackathons")
	recommendCmd.Flags().String("mode", "", "scoring mode: lexical or combined")
	recommendCmd.Flags().IntP("limit", "l", 0, "how many hackathons to recommend")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "special file with hackathons to exclude. Default is unset.")
	recommendCmd.Flags().BoolP("yes", "y", false, "print recommendations once without the interactive menu")

	viper.BindPFlag("skills", recommendCmd.Flags().Lookup("skills"))
	viper.BindPFlag("source.csv", recommendCmd.Flags().Lookup("csv"))
	viper.BindPFlag("mode", recommendCmd.Flags().Lookup("mode"))
	viper.BindPFlag("limit", recommendCmd.Flags().Lookup("limit"))
	viper.BindPFlag("exclude-file", recommendCmd.Flags().Lookup("exclude-file"))
}

// session is what the interactive actions operate on.
type session struct {
	logger   *zap.Logger
	config   *Config
	taxonomy *taxonomy.Taxonomy
	semantic *semantic.Matcher
	skills   []string
	result   *recommend.Recommendations
}

func runRecommend(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hackmatch", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	hackathons, err := loadHackathons(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading hackathons", zap.Error(err))
	}

	if hackathons.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no hackathons found"))
		return
	}

	userID, _ := cmd.Flags().GetUint("user")
	skills, err := resolveSkills(ctx, config, userID)
	if err != nil {
		logger.Fatal("resolving skills", zap.Error(err),
			zap.String("hint", "pass --skills, set the skills key or use --user with a stored profile"),
		)
	}

	s := &session{
		logger:   logger,
		config:   config,
		taxonomy: taxonomy.Default(),
		skills:   skills,
	}

	recommender, err := s.newRecommender(ctx)
	if err != nil {
		logger.Fatal("building the recommender", zap.Error(err))
	}

	s.result, err = recommender.Recommend(ctx, hackathons.Items, skills)
	if err != nil {
		logger.Fatal("recommending hackathons", zap.Error(err))
	}

	if s.result.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no hackathons left after scoring"))
		return
	}

	if auto, _ := cmd.Flags().GetBool("yes"); auto {
		s.show()
		return
	}

	for {
		_, action, err := s.menu().Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (s *session) menu() *promptui.Select {
	items := []string{PromptShow, PromptDetails, PromptReportByCategories, PromptResultsToFile}
	if s.config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}

	return &promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptShow:
		s.show()
		return nil
	case PromptDetails:
		return s.details(ctx)
	case PromptReportByCategories:
		report := s.result.Hackathons().ReportByCategory(s.taxonomy)
		pretty, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		s.logger.Info(string(pretty), zap.Int("hackathons count", s.result.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := s.result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) show() {
	for i, item := range s.result.Items {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("title", item.Title()),
			zap.Float64("score", item.Score),
			zap.Float64("lexical_score", item.LexicalScore),
			zap.String("deadline", item.Hackathon.Deadline),
			zap.String("prize", item.Hackathon.Prize),
		}
		if item.SemanticSimilarity != nil {
			fields = append(fields, zap.Float64("semantic_similarity", *item.SemanticSimilarity))
		}
		if item.Hackathon.URL != "" {
			fields = append(fields, zap.String("url", item.Hackathon.URL))
		}
		if item.Review != nil && item.Review.Error == "" {
			fields = append(fields, zap.Bool("fit", item.Review.Fit), zap.String("reason", item.Review.Reason))
		}
		s.logger.Info("recommendation", fields...)
	}

	if m := s.result.BatchMetrics; m != nil {
		s.logger.Info("batch self-consistency",
			zap.Float64("threshold", m.Threshold),
			zap.Float64("precision", m.Precision),
			zap.Float64("recall", m.Recall),
			zap.String("note", "synthetic labels, not a quality signal"),
		)
	}
}

func (s *session) details(ctx context.Context) error {
	for {
		items := make([]string, 0, s.result.Len()+1)
		for i, item := range s.result.Items {
			items = append(items, fmt.Sprintf("%d. %s (%.2f)", i+1, item.Title(), item.Score))
		}

		choose := promptui.Select{
			Label: "Choose a hackathon and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := choose.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		item := s.result.Items[idx]
		pretty, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		s.logger.Info(string(pretty))

		if s.semantic == nil {
			continue
		}

		pooling, err := s.semantic.Explain(ctx, strings.Join(s.skills, ", "), item.Hackathon.Description)
		if err != nil {
			s.logger.Warn("explaining similarity failed", zap.Error(err))
			continue
		}
		pretty, _ = json.MarshalIndent(pooling, "", "  ")
		s.logger.Info(string(pretty), zap.String("title", item.Title()))
	}
}

func (s *session) appendToExcludeFile() error {
	excludeFile := s.config.ExcludeFile

	excluded, err := hackathon.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(s.result.Hackathons().ToExcluded())

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("hackathons appended to exclude file",
		zap.String("path", excludeFile),
		zap.Int("excluded count", len(excluded.Items)),
	)
	return nil
}

// loadHackathons reads every configured source. Devpost listings follow
// the csv records.
func loadHackathons(ctx context.Context, config *Config, logger *zap.Logger) (*hackathon.Hackathons, error) {
	all := &hackathon.Hackathons{}
	configured := false

	if path := strings.TrimSpace(config.Source.CSV); path != "" {
		configured = true
		loaded, err := hackathon.LoadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("csv source: %w", err)
		}
		logger.Info("loaded hackathons from csv", zap.String("path", path), zap.Int("count", loaded.Len()))
		all.Items = append(all.Items, loaded.Items...)
	}

	if config.Source.Devpost.Enabled {
		configured = true
		scraped, err := newScraper(config.Source.Devpost, logger).Scrape(ctx)
		if err != nil {
			return nil, fmt.Errorf("devpost source: %w", err)
		}
		logger.Info("scraped hackathons", zap.String("url", config.Source.Devpost.URL), zap.Int("count", scraped.Len()))
		all.Items = append(all.Items, scraped.Items...)
	}

	if !configured {
		return nil, errors.New("no hackathon source configured: set source.csv or enable source.devpost")
	}

	logger.Debug("hackathons to score", zap.Strings("titles", all.Titles()))

	return all, nil
}

func newScraper(cfg DevpostConfig, logger *zap.Logger) *hackathon.Scraper {
	scraper := hackathon.NewScraper(logger)
	if cfg.URL != "" {
		scraper.URL = cfg.URL
	}
	if cfg.UserAgent != "" {
		scraper.UserAgent = cfg.UserAgent
	}
	return scraper
}

// resolveSkills prefers the stored profile when a user id is given.
func resolveSkills(ctx context.Context, config *Config, userID uint) ([]string, error) {
	if userID == 0 {
		if len(keywords.Normalize(config.Skills)) == 0 {
			return nil, recommend.ErrNoSkills
		}
		return config.Skills, nil
	}

	store, err := openStore(config)
	if err != nil {
		return nil, err
	}

	user, err := store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Skills) == 0 {
		return nil, fmt.Errorf("user %q: %w", user.Username, recommend.ErrNoSkills)
	}
	return user.Skills, nil
}

func (s *session) newRecommender(ctx context.Context) (*recommend.Recommender, error) {
	cfg := s.config

	extractor, err := keywords.NewExtractor(s.taxonomy,
		keywords.WithCacheSize(cfg.Keywords.CacheSize),
		keywords.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	opts := []recommend.Option{
		recommend.WithLimit(cfg.Limit),
		recommend.WithRequestedMode(recommend.Mode(cfg.Mode)),
		recommend.WithLogger(s.logger),
		recommend.WithFilters(
			filtering.NewMinScore(cfg.Filters.MinScore),
			filtering.NewExcludeFile(cfg.ExcludeFile),
		),
	}
	if cfg.Filters.DropUnmatched != nil {
		opts = append(opts, recommend.WithDropUnmatched(*cfg.Filters.DropUnmatched))
	}

	wantSemantic := recommend.Mode(cfg.Mode) == recommend.ModeCombined
	if wantSemantic || cfg.Review.Enabled {
		client, err := newGenAIClient(ctx, cfg.Semantic)
		if err != nil {
			// Scoring never depends on the provider being configured.
			s.logger.Warn("gemini is not available, using lexical scoring without reviews", zap.Error(err),
				zap.String("hint", "set semantic.api-key-file or GEMINI_API_KEY"),
			)
		} else {
			if wantSemantic {
				s.semantic, err = newSemanticMatcher(client, cfg.Semantic, s.logger)
				if err != nil {
					return nil, err
				}
				opts = append(opts, recommend.WithSemantic(s.semantic))
			}
			if cfg.Review.Enabled {
				opts = append(opts, recommend.WithReviewer(newReviewer(client, cfg, s.logger)))
			}
		}
	}

	return recommend.New(extractor, matching.NewLexical(s.taxonomy), opts...)
}

func newGenAIClient(ctx context.Context, cfg SemanticConfig) (*genai.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}
	return gemini.NewClient(ctx, apiKey)
}

func newSemanticMatcher(client *genai.Client, cfg SemanticConfig, base *zap.Logger) (*semantic.Matcher, error) {
	embedLogger := logger.WithCommonFields(base, "gemini", cfg.Model)

	embedder := gemini.NewEmbedder(client.Models, gemini.EmbedderConfig{
		Model:             cfg.Model,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxRetries:        cfg.MaxRetries,
		BreakerFailures:   cfg.Breaker.Failures,
		BreakerCooldown:   cfg.Breaker.Cooldown,
	}, embedLogger)

	return semantic.NewMatcher(embedder,
		semantic.WithTimeout(cfg.Timeout),
		semantic.WithLogger(embedLogger),
	)
}

func newReviewer(client *genai.Client, cfg *Config, base *zap.Logger) *gemini.Reviewer {
	generator := gemini.NewGenerator(client.Models, cfg.Review.Model, cfg.Semantic.MaxRetries)
	reviewLogger := logger.WithCommonFields(base, "gemini", generator.Model())
	return gemini.NewReviewer(generator, cfg.Review.MaxLogLength, reviewLogger)
}
