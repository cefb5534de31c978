package play

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/game"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

const (
	MsgUnknownCommand = "I don't know how to do that."
	MsgNotHere        = "You can't do that here."
	MsgDone           = "Done."
	MsgGoodbye        = "Goodbye."
)

// HelpText lists the built-in commands.
const HelpText = `Built-in commands:
  look (l)          describe where you are
  examine [item]    look more closely, or at something you carry
  inventory (i)     list what you carry
  save              save the game
  help              show this help
  quit              leave the game
Anything else is tried as an action, e.g. "take key".`

// ErrScenarioMismatch is returned when a save belongs to another scenario.
var ErrScenarioMismatch = errors.New("save belongs to a different scenario")

// Reply is the result of one line of player input.
type Reply struct {
	Text  string
	Quit  bool
	Moved bool
}

// Session is one player's game plus where it is saved.
type Session struct {
	ID       uuid.UUID
	game     *game.Game
	store    storage.Store
	scenario *scenario.Scenario
	logger   *slog.Logger
}

// NewSession starts a new game of sc with a fresh session ID.
func NewSession(sc *scenario.Scenario, store storage.Store, log *slog.Logger) (*Session, error) {
	id := uuid.New()
	log = logger.WithSession(log, id)

	g, err := game.New(sc, game.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("Started new game", "scenario", sc.Name)

	return &Session{ID: id, game: g, store: store, scenario: sc, logger: log}, nil
}

// ResumeSession continues the saved game id.
func ResumeSession(ctx context.Context, sc *scenario.Scenario, store storage.Store, id uuid.UUID, log *slog.Logger) (*Session, error) {
	log = logger.WithSession(log, id)

	saved, err := store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved.Scenario != sc.FileName {
		return nil, fmt.Errorf("%w: saved %q, loaded %q", ErrScenarioMismatch, saved.Scenario, sc.FileName)
	}

	g, err := game.Resume(sc, saved.State, game.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("Resumed game", "scenario", sc.Name, "saved_at", saved.UpdatedAt)

	return &Session{ID: id, game: g, store: store, scenario: sc, logger: log}, nil
}

// Game exposes the running game.
func (s *Session) Game() *game.Game {
	return s.game
}

// Intro is the text shown before the first command.
func (s *Session) Intro() (string, error) {
	var b strings.Builder
	if s.scenario.Name != "" {
		fmt.Fprintf(&b, "%s\n\n", s.scenario.Name)
	}
	if s.scenario.Story != "" {
		fmt.Fprintf(&b, "%s\n\n", s.scenario.Story)
	}
	if err := s.describeLocation(&b, false); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Handle runs one line of player input. Built-in commands take precedence
// over scenario transitions with the same text. "examine <item>" shows a
// held item's description; for anything else it runs a matching
// transition if there is one, else describes the location closely. The returned error is
// reserved for faults such as broken content or a failed save; refusals
// like "You can't do that here." are ordinary replies.
func (s *Session) Handle(ctx context.Context, input string) (Reply, error) {
	cmd := scenario.NormalizeCommand(input)

	switch cmd {
	case "":
		return Reply{}, nil
	case "look", "l":
		return s.look(false)
	case "examine", "look closely":
		return s.look(true)
	case "inventory", "i":
		var b strings.Builder
		if err := s.game.DescribeInventory(&b); err != nil {
			return Reply{}, err
		}
		return Reply{Text: strings.TrimRight(b.String(), "\n")}, nil
	case "save":
		if err := s.Save(ctx); err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("Game saved as %s.", s.ID)}, nil
	case "help", "?":
		return Reply{Text: HelpText}, nil
	case "quit", "exit":
		return Reply{Text: MsgGoodbye, Quit: true}, nil
	}

	if target, ok := strings.CutPrefix(cmd, "examine "); ok {
		if reply, ok := s.examineItem(target); ok {
			return reply, nil
		}
		if !s.game.Knows(cmd) {
			return s.look(true)
		}
	}

	out, err := s.game.Step(cmd)
	switch {
	case errors.Is(err, game.ErrUnknownCommand):
		s.logger.Debug("Unknown command", "cmd", cmd)
		return Reply{Text: MsgUnknownCommand}, nil
	case errors.Is(err, game.ErrNoValidTransition):
		s.logger.Debug("No valid transition", "cmd", cmd, "location", s.game.Location())
		return Reply{Text: MsgNotHere}, nil
	case err != nil:
		s.logger.Error("Failed to apply command", "cmd", cmd, "error", err)
		return Reply{}, err
	}

	if !out.Moved {
		return Reply{Text: MsgDone}, nil
	}
	reply, err := s.look(false)
	reply.Moved = true
	return reply, err
}

// Save writes the current state to the store.
func (s *Session) Save(ctx context.Context) error {
	err := s.store.SaveGame(ctx, &storage.SavedGame{
		ID:       s.ID,
		Scenario: s.scenario.FileName,
		State:    s.game.State(),
	})
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	s.logger.Info("Game saved")
	return nil
}

// examineItem describes the held item named target.
func (s *Session) examineItem(target string) (Reply, bool) {
	for _, k := range s.game.State().Inventory.Held() {
		item, ok := s.scenario.Item(k)
		if !ok || scenario.NormalizeCommand(item.Name) != target {
			continue
		}
		if item.Description == "" {
			return Reply{Text: game.DefaultDescription}, true
		}
		return Reply{Text: item.Description}, true
	}
	return Reply{}, false
}

func (s *Session) look(long bool) (Reply, error) {
	var b strings.Builder
	if err := s.describeLocation(&b, long); err != nil {
		return Reply{}, err
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *Session) describeLocation(b *strings.Builder, long bool) error {
	if loc, ok := s.scenario.Location(s.game.Location()); ok && loc.Name != "" {
		fmt.Fprintf(b, "%s\n", cases.Title(language.English).String(loc.Name))
	}
	return s.game.DescribeCurrentLocation(b, long)
}
