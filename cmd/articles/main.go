package main

import (
	"context"
	"flag"
	"log"

	"github.com/AlecAivazis/survey/v2"

	"chatadmin/internal/config"
	"chatadmin/internal/pkg/aihelper"
	"chatadmin/internal/pkg/chathistory"
	"chatadmin/internal/pkg/logging"
	"chatadmin/internal/pkg/normalize"
)

func main() {
	faqCount := flag.Int("faq", 5, "FAQ questions to generate per article")
	flag.Parse()

	var stage, brand string
	ask(&survey.Select{Message: "Which environment?", Options: config.Stages}, &stage)
	ask(&survey.Select{Message: "Which brand?", Options: config.Brands}, &brand)

	logger := logging.New(stage)

	cfg, err := config.Load(stage, brand)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	store, err := chathistory.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to chat store")
	}
	defer store.Close(ctx)

	helper := aihelper.New(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.ChatDeployment, cfg.EmbeddingDeployment, logger)

	articles, err := store.Articles(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("load articles")
	}

	// Per-item failures are logged and the batch moves on.
	failed := 0
	for _, article := range articles {
		text := normalize.Clean(article.Body)
		if text == "" {
			logger.Warn().Str("article_id", article.ID.Hex()).Msg("article has no text, skipping")
			continue
		}

		summary, err := helper.Summarize(ctx, text)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("article_id", article.ID.Hex()).Msg("summarize failed")
			continue
		}

		questions, err := helper.GenerateFAQQuestions(ctx, text, *faqCount)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("article_id", article.ID.Hex()).Msg("faq generation failed")
			continue
		}

		if err := store.UpdateArticleInsights(ctx, article.ID, summary, questions); err != nil {
			failed++
			logger.Error().Err(err).Str("article_id", article.ID.Hex()).Msg("store insights failed")
			continue
		}

		logger.Info().
			Str("article_id", article.ID.Hex()).
			Str("title", article.Title).
			Int("questions", len(questions)).
			Msg("article processed")
	}

	logger.Info().
		Int("articles", len(articles)).
		Int("failed", failed).
		Msg("article batch done")
}

func ask(prompt survey.Prompt, dst *string) {
	if err := survey.AskOne(prompt, dst, survey.WithValidator(survey.Required)); err != nil {
		log.Fatalf("prompt failed: %v", err)
	}
}
