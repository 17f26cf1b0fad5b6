package main

import (
	"context"
	"log"

	"github.com/AlecAivazis/survey/v2"

	"chatadmin/internal/config"
	"chatadmin/internal/pkg/chathistory"
	"chatadmin/internal/pkg/logging"
)

const (
	taskTransfer   = "Transfer legacy thumbs to feedback"
	taskLink       = "Link feedback to chats"
	taskSync       = "Sync feedback timestamps"
	taskRemove     = "Remove legacy thumb fields"
	taskInjections = "Find prompt injections"
)

func main() {
	var stage, brand, task string
	ask(&survey.Select{Message: "Which environment?", Options: config.Stages}, &stage)
	ask(&survey.Select{Message: "Which brand?", Options: config.Brands}, &brand)
	ask(&survey.Select{
		Message: "What task?",
		Options: []string{taskTransfer, taskLink, taskSync, taskRemove, taskInjections},
	}, &task)

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

	switch task {
	case taskTransfer:
		n, err := store.TransferThumbsToFeedback(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("transfer thumbs")
		}
		logger.Info().Int("created", n).Msg("feedback documents created")
	case taskLink:
		n, err := store.LinkFeedbackToChats(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("link feedback")
		}
		logger.Info().Int("linked", n).Msg("chats linked to feedback")
	case taskSync:
		n, err := store.SyncFeedbackTimestamps(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("sync feedback timestamps")
		}
		logger.Info().Int("synced", n).Msg("feedback timestamps synced")
	case taskRemove:
		n, err := store.RemoveThumbFields(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("remove thumb fields")
		}
		logger.Info().Int("updated", n).Msg("legacy thumb fields removed")
	case taskInjections:
		chats, err := store.FindPromptInjections(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("find prompt injections")
		}
		for _, chat := range chats {
			logger.Info().
				Str("chat_id", chat.ID.Hex()).
				Str("user_id", chat.UserID).
				Time("created_at", chat.CreatedAt).
				Msg("prompt injection attempt")
		}
		logger.Info().Int("matches", len(chats)).Msg("injection sweep done")
	}
}

func ask(prompt survey.Prompt, dst *string) {
	if err := survey.AskOne(prompt, dst, survey.WithValidator(survey.Required)); err != nil {
		log.Fatalf("prompt failed: %v", err)
	}
}
