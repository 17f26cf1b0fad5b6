package main

import (
	"context"
	"flag"
	"log"

	"github.com/AlecAivazis/survey/v2"

	"chatadmin/internal/config"
	"chatadmin/internal/pkg/chathistory"
	"chatadmin/internal/pkg/logging"
	"chatadmin/internal/pkg/report"
)

const (
	jsonOutputFile = "users.json"
	xlsxOutputFile = "users.xlsx"
)

func main() {
	start := flag.String("start", "2024-10-01", "report window start date, inclusive")
	end := flag.String("end", "2024-12-31", "report window end date, inclusive")
	sortBy := flag.String("sort", "user_id", "row sort field")
	order := flag.String("order", "asc", "sort direction: asc or desc")
	flag.Parse()

	var stage, brand, format string
	ask(&survey.Select{Message: "Which environment?", Options: config.Stages}, &stage)
	ask(&survey.Select{Message: "Which brand?", Options: config.Brands}, &brand)
	ask(&survey.Select{Message: "Which output format?", Options: []string{"json", "xlsx"}}, &format)

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

	rows, total, err := store.UserReport(ctx, chathistory.ReportOptions{
		StartDate: *start,
		EndDate:   *end,
		SortBy:    *sortBy,
		Order:     chathistory.ParseOrder(*order),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("run user report")
	}

	out := make([]report.Row, len(rows))
	for i, row := range rows {
		out[i] = report.FieldsOf(row)
	}

	path := jsonOutputFile
	if format == "xlsx" {
		path = xlsxOutputFile
		err = report.WriteXLSX(path, out)
	} else {
		err = report.WriteJSON(path, out)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("write report")
	}

	logger.Info().
		Int("rows", len(out)).
		Int64("total", total).
		Str("file", path).
		Msg("user report written")
}

func ask(prompt survey.Prompt, dst *string) {
	if err := survey.AskOne(prompt, dst, survey.WithValidator(survey.Required)); err != nil {
		log.Fatalf("prompt failed: %v", err)
	}
}
