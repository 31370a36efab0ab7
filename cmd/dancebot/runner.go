package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/bot"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
	"github.com/kennyhngo/Wizard101-DanceBot/pkg/templates"
)

// gameFlow is the menu navigation around one game
type gameFlow interface {
	Setup() error
	Finish() error
}

// sessionRunner plays the rounds of one game
type sessionRunner interface {
	Run(ctx context.Context) error
}

// runner plays NumGames games back to back
type runner struct {
	games      int
	flow       gameFlow
	newSession func() (sessionRunner, error)
	onGame     func(game, games int)
	reporter   *logging.ErrorReporter
	logger     *logging.Logger
}

func (r *runner) run(ctx context.Context) error {
	for game := 1; game <= r.games; game++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.onGame != nil {
			r.onGame(game, r.games)
		}
		log := r.logger.WithContext(map[string]interface{}{"game": game, "games": r.games})

		log.Info("Opening the dance game")
		if err := r.flow.Setup(); err != nil {
			r.report(err, "Game setup failed")
			return fmt.Errorf("game %d setup: %w", game, err)
		}

		session, err := r.newSession()
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
		if err := session.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Stopped by user")
				return err
			}
			r.report(err, "Dance session failed")
			return fmt.Errorf("game %d: %w", game, err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.flow.Finish(); err != nil {
			r.report(err, "Game finish failed")
			return fmt.Errorf("game %d finish: %w", game, err)
		}
		log.Info("Game complete")
	}
	return nil
}

func (r *runner) report(err error, message string) {
	if r.reporter == nil {
		return
	}
	r.reporter.ReportError(categorize(err), logging.ErrorSeverityHigh, "runner", message, err)
}

// categorize maps the package sentinels onto report categories
func categorize(err error) logging.ErrorCategory {
	switch {
	case errors.Is(err, bot.ErrInput):
		return logging.ErrorCategoryInput
	case errors.Is(err, bot.ErrCapture):
		return logging.ErrorCategoryCapture
	case errors.Is(err, bot.ErrStalled):
		return logging.ErrorCategorySession
	case errors.Is(err, templates.ErrMissingReference):
		return logging.ErrorCategoryTemplates
	default:
		return logging.ErrorCategorySystem
	}
}
