package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/AlecAivazis/survey/v2"

	"chatadmin/internal/config"
	"chatadmin/internal/pkg/aihelper"
	"chatadmin/internal/pkg/logging"
	"chatadmin/internal/pkg/normalize"
	"chatadmin/internal/pkg/scrape"
)

func main() {
	flag.Parse()
	urls := flag.Args()
	if len(urls) == 0 {
		log.Fatal("usage: outline <url> [<url> ...]")
	}

	var stage, brand string
	ask(&survey.Select{Message: "Which environment?", Options: config.Stages}, &stage)
	ask(&survey.Select{Message: "Which brand?", Options: config.Brands}, &brand)

	logger := logging.New(stage)

	cfg, err := config.Load(stage, brand)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	helper := aihelper.New(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.ChatDeployment, cfg.EmbeddingDeployment, logger)
	scraper := scrape.New()

	ctx := context.Background()
	skipped := 0
	for _, url := range urls {
		body, err := scraper.Fetch(ctx, url)
		if err != nil {
			skipped++
			logger.Error().Err(err).Str("url", url).Msg("fetch failed")
			continue
		}

		page, err := scrape.Extract(body)
		if err != nil {
			skipped++
			logger.Error().Err(err).Str("url", url).Msg("extract failed")
			continue
		}

		text := normalize.CollapseWhitespace(page.Title + "\n" + page.Text)
		outline, err := helper.Outline(ctx, text)
		if errors.Is(err, aihelper.ErrContentTooLong) {
			skipped++
			logger.Warn().Str("url", url).Msg("page too long to outline, skipping")
			continue
		}
		if err != nil {
			skipped++
			logger.Error().Err(err).Str("url", url).Msg("outline failed")
			continue
		}

		fmt.Printf("# %s\n%s\n\n", url, outline)
	}

	logger.Info().
		Int("pages", len(urls)).
		Int("skipped", skipped).
		Msg("outline batch done")
}

func ask(prompt survey.Prompt, dst *string) {
	if err := survey.AskOne(prompt, dst, survey.WithValidator(survey.Required)); err != nil {
		log.Fatalf("prompt failed: %v", err)
	}
}
