package records

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/mcoot/edugames/internal/dependencies/clock"
	"github.com/mcoot/edugames/internal/dependencies/ids"
	"github.com/mcoot/edugames/internal/metrics"
	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/storage"
)

// Service records completed game attempts and grants achievements
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new records Service. metrics may be nil.
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		metrics: metrics,
		logger:  logger,
	}
}

// kind describes one game kind's collection on the user aggregate
type kind[A any] struct {
	name        model.GameKind
	achievement model.AchievementName
	attempts    func(u *model.User) *[]A
	id          func(a A) model.GameID
	sameScore   func(a, b A) bool
}

var memoryKind = kind[model.MemoryGame]{
	name:        model.GameKindMemory,
	achievement: model.AchievementMemory,
	attempts:    func(u *model.User) *[]model.MemoryGame { return &u.MemoryGames },
	id:          func(a model.MemoryGame) model.GameID { return a.ID },
	sameScore:   func(a, b model.MemoryGame) bool { return a.TimedScore == b.TimedScore },
}

var wordSearchKind = kind[model.WordSearchGame]{
	name:        model.GameKindWordSearch,
	achievement: model.AchievementWordSearch,
	attempts:    func(u *model.User) *[]model.WordSearchGame { return &u.WordSearchGames },
	id:          func(a model.WordSearchGame) model.GameID { return a.ID },
	sameScore:   func(a, b model.WordSearchGame) bool { return a.TimedScore == b.TimedScore },
}

var puzzleKind = kind[model.PuzzleGame]{
	name:        model.GameKindPuzzle,
	achievement: model.AchievementPuzzle,
	attempts:    func(u *model.User) *[]model.PuzzleGame { return &u.PuzzleGames },
	id:          func(a model.PuzzleGame) model.GameID { return a.ID },
	sameScore:   func(a, b model.PuzzleGame) bool { return a.PuzzleScore == b.PuzzleScore },
}

// SubmitMemoryGame records a memory attempt
func (s *Service) SubmitMemoryGame(ctx context.Context, userID model.UserID, score model.TimedScore) (*model.User, error) {
	return submit(ctx, s, memoryKind, userID, score.Valid(), func(id model.GameID, now time.Time) model.MemoryGame {
		return model.MemoryGame{ID: id, TimedScore: score, CreatedAt: now}
	})
}

// SubmitWordSearchGame records a word-search attempt
func (s *Service) SubmitWordSearchGame(ctx context.Context, userID model.UserID, score model.TimedScore) (*model.User, error) {
	return submit(ctx, s, wordSearchKind, userID, score.Valid(), func(id model.GameID, now time.Time) model.WordSearchGame {
		return model.WordSearchGame{ID: id, TimedScore: score, CreatedAt: now}
	})
}

// SubmitPuzzleGame records a puzzle attempt
func (s *Service) SubmitPuzzleGame(ctx context.Context, userID model.UserID, score model.PuzzleScore) (*model.User, error) {
	return submit(ctx, s, puzzleKind, userID, score.Valid(), func(id model.GameID, now time.Time) model.PuzzleGame {
		return model.PuzzleGame{ID: id, PuzzleScore: score, CreatedAt: now}
	})
}

// ListMemoryGames returns a user's memory attempts in submission order
func (s *Service) ListMemoryGames(ctx context.Context, userID model.UserID) ([]model.MemoryGame, error) {
	return list(ctx, s, memoryKind, userID)
}

// ListWordSearchGames returns a user's word-search attempts in submission order
func (s *Service) ListWordSearchGames(ctx context.Context, userID model.UserID) ([]model.WordSearchGame, error) {
	return list(ctx, s, wordSearchKind, userID)
}

// ListPuzzleGames returns a user's puzzle attempts in submission order
func (s *Service) ListPuzzleGames(ctx context.Context, userID model.UserID) ([]model.PuzzleGame, error) {
	return list(ctx, s, puzzleKind, userID)
}

// GetMemoryGame returns a single memory attempt
func (s *Service) GetMemoryGame(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.MemoryGame, error) {
	return get(ctx, s, memoryKind, userID, gameID)
}

// GetWordSearchGame returns a single word-search attempt
func (s *Service) GetWordSearchGame(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.WordSearchGame, error) {
	return get(ctx, s, wordSearchKind, userID, gameID)
}

// GetPuzzleGame returns a single puzzle attempt
func (s *Service) GetPuzzleGame(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.PuzzleGame, error) {
	return get(ctx, s, puzzleKind, userID, gameID)
}

// submit appends an attempt and, when no earlier attempt of the kind has an
// equal score, an achievement. Both happen in one atomic write.
func submit[A any](
	ctx context.Context,
	s *Service,
	k kind[A],
	userID model.UserID,
	validScore bool,
	build func(id model.GameID, now time.Time) A,
) (*model.User, error) {
	if !ids.Valid(string(userID)) {
		return nil, model.ErrInvalidID
	}
	if !validScore {
		return nil, model.ErrInvalidScore
	}

	now := s.clock.Now()
	attempt := build(model.GameID(s.ids.NewID()), now)

	// The mutation may run more than once under contention
	var granted bool
	user, err := s.storage.UpdateUser(ctx, userID, func(u *model.User) error {
		granted = false
		attempts := k.attempts(u)

		novel := true
		for _, prior := range *attempts {
			if k.sameScore(prior, attempt) {
				novel = false
				break
			}
		}
		if novel {
			u.Achievements = append(u.Achievements, model.Achievement{Name: k.achievement, UnlockedAt: now})
			granted = true
		}

		*attempts = append(*attempts, attempt)
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, oops.In("records").
			With("user_id", userID).
			With("kind", k.name).
			Wrap(err)
	}

	s.metrics.RecordAttempt(k.name)
	if granted {
		s.metrics.RecordAchievement(k.achievement)
	}

	s.logger.Info("game recorded",
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(k.id(attempt))),
		slog.String("kind", string(k.name)),
		slog.Bool("achievement_granted", granted),
	)
	return user, nil
}

func list[A any](ctx context.Context, s *Service, k kind[A], userID model.UserID) ([]A, error) {
	if !ids.Valid(string(userID)) {
		return nil, model.ErrInvalidID
	}
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, oops.In("records").With("user_id", userID).Wrap(err)
	}
	attempts := *k.attempts(user)
	if attempts == nil {
		return []A{}, nil
	}
	return attempts, nil
}

func get[A any](ctx context.Context, s *Service, k kind[A], userID model.UserID, gameID model.GameID) (*A, error) {
	if !ids.Valid(string(userID)) || !ids.Valid(string(gameID)) {
		return nil, model.ErrInvalidID
	}
	attempts, err := list(ctx, s, k, userID)
	if err != nil {
		return nil, err
	}
	for i := range attempts {
		if k.id(attempts[i]) == gameID {
			return &attempts[i], nil
		}
	}
	return nil, oops.In("records").
		With("user_id", userID).
		With("game_id", gameID).
		Wrap(model.ErrGameNotFound)
}
