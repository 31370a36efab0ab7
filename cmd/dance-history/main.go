package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/config"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/database"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

func main() {
	settingsPath := flag.String("config", config.DefaultPath, "Settings file naming the history database")
	dbPath := flag.String("db", "", "Path to database file (overrides the settings)")
	limit := flag.Int("n", 10, "Number of sessions to list")
	session := flag.String("session", "", "Show the rounds of one session")
	flag.Parse()

	logging.SetDefaults(io.Discard, logging.LogLevelError)

	path := *dbPath
	if path == "" {
		settings, err := config.LoadFromINI(*settingsPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		path = settings.HistoryPath
	}

	db, err := database.Open(path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if *session != "" {
		if err := printSession(os.Stdout, db, *session); err != nil {
			log.Fatalf("Failed to read session %s: %v", *session, err)
		}
		return
	}

	if err := printSessions(os.Stdout, db, *limit); err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}
}

func printSessions(w io.Writer, db *database.DB, limit int) error {
	sessions, err := db.ListRecentSessions(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded")
		return nil
	}

	for _, s := range sessions {
		started := "-"
		if s.StartedAt != nil {
			started = s.StartedAt.Local().Format("2006-01-02 15:04:05")
		}
		duration := "-"
		if s.DurationMs != nil {
			duration = (time.Duration(*s.DurationMs) * time.Millisecond).String()
		}
		fmt.Fprintf(w, "%-36s %s  %-9s %d/%d rounds  %s\n",
			s.SessionID, started, s.Status, s.LastTurn, s.TotalRounds, duration)
	}
	return nil
}

func printSession(w io.Writer, db *database.DB, sessionID string) error {
	summary, err := db.GetSessionSummary(sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s, %d of %d rounds, %d capture errors\n",
		summary.SessionID, summary.Status, summary.RoundsCompleted, summary.TotalRounds, summary.TickErrors)

	rounds, err := db.GetRounds(sessionID)
	if err != nil {
		return err
	}
	for _, r := range rounds {
		fmt.Fprintf(w, "  round %d  %s\n", r.Turn+1, r.Moves)
	}

	tickErrs, err := db.GetTickErrors(sessionID)
	if err != nil {
		return err
	}
	for _, e := range tickErrs {
		fmt.Fprintf(w, "  ! round %d  %s\n", e.Turn+1, e.ErrorMessage)
	}
	return nil
}
