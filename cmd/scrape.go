package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/logger"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the devpost listing and dump it to a json file",
	Run: func(_ *cobra.Command, _ []string) {
		scrape()
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().String("url", "", "listing page to scrape")
	viper.BindPFlag("source.devpost.url", scrapeCmd.Flags().Lookup("url"))
}

func scrape() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	hackathons, err := newScraper(config.Source.Devpost, logger).Scrape(context.Background())
	if err != nil {
		logger.Fatal("scraping hackathons", zap.Error(err))
	}

	filename, err := hackathons.DumpToTmpFile()
	if err != nil {
		logger.Fatal("dump hackathons to file", zap.Error(err))
	}

	logger.Info("dumping result to file", zap.String("filename", filename), zap.Int("count", hackathons.Len()))
}
