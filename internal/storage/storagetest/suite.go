// Package storagetest holds the behavioral suite every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/edugames/internal/model"
	"github.com/mcoot/edugames/internal/storage"
)

// Suite exercises a storage.Storage implementation.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newUser(n int) *model.User {
	return model.NewUser(
		model.UserID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n)),
		fmt.Sprintf("User %d", n),
		fmt.Sprintf("user%d@example.com", n),
		"hash",
		baseTime.Add(time.Duration(n)*time.Minute),
	)
}

func (s *Suite) TestCreateAndGetUser() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	got, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Name, got.Name)
	s.Equal(user.Email, got.Email)
	s.True(user.CreatedAt.Equal(got.CreatedAt))
	s.NotNil(got.MemoryGames)
	s.NotNil(got.Achievements)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestCreateUserDuplicateEmail() {
	first := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, first))

	second := newUser(2)
	second.Email = first.Email
	s.ErrorIs(s.Storage.CreateUser(s.Ctx, second), model.ErrEmailTaken)

	_, err := s.Storage.GetUser(s.Ctx, second.ID)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestGetUserByEmail() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	got, err := s.Storage.GetUserByEmail(s.Ctx, user.Email)
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	_, err = s.Storage.GetUserByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestListUsersOrderedByCreation() {
	for _, n := range []int{3, 1, 2} {
		s.Require().NoError(s.Storage.CreateUser(s.Ctx, newUser(n)))
	}

	users, err := s.Storage.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("User 1", users[0].Name)
	s.Equal("User 2", users[1].Name)
	s.Equal("User 3", users[2].Name)
}

func (s *Suite) TestListUsersEmpty() {
	users, err := s.Storage.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(users)
}

func (s *Suite) TestUpdateUserAppliesMutation() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	updated, err := s.Storage.UpdateUser(s.Ctx, user.ID, func(u *model.User) error {
		u.Name = "Renamed"
		u.PuzzleGames = append(u.PuzzleGames, model.PuzzleGame{ID: "g1", PuzzleScore: model.PuzzleScore{Turns: 12}})
		return nil
	})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)
	s.Equal(user.Version+1, updated.Version)

	got, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.Require().Len(got.PuzzleGames, 1)
	s.Equal(12, got.PuzzleGames[0].Turns)
}

func (s *Suite) TestUpdateUserNotFound() {
	_, err := s.Storage.UpdateUser(s.Ctx, "missing", func(u *model.User) error { return nil })
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestUpdateUserMutationErrorAbortsWrite() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	boom := errors.New("boom")
	_, err := s.Storage.UpdateUser(s.Ctx, user.ID, func(u *model.User) error {
		u.Name = "Should not persist"
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Name, got.Name)
}

func (s *Suite) TestUpdateUserMovesEmailIndex() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	_, err := s.Storage.UpdateUser(s.Ctx, user.ID, func(u *model.User) error {
		u.Email = "moved@example.com"
		return nil
	})
	s.Require().NoError(err)

	_, err = s.Storage.GetUserByEmail(s.Ctx, user.Email)
	s.ErrorIs(err, model.ErrUserNotFound)

	got, err := s.Storage.GetUserByEmail(s.Ctx, "moved@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	// The old address is free again
	other := newUser(2)
	other.Email = user.Email
	s.NoError(s.Storage.CreateUser(s.Ctx, other))
}

func (s *Suite) TestUpdateUserEmailConflict() {
	first, second := newUser(1), newUser(2)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, first))
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, second))

	_, err := s.Storage.UpdateUser(s.Ctx, second.ID, func(u *model.User) error {
		u.Email = first.Email
		return nil
	})
	s.ErrorIs(err, model.ErrEmailTaken)

	got, err := s.Storage.GetUserByEmail(s.Ctx, first.Email)
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)
}

func (s *Suite) TestReturnedUsersAreCopies() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	got, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	got.Name = "Mutated"
	got.Achievements = append(got.Achievements, model.Achievement{Name: model.AchievementMemory})

	again, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Name, again.Name)
	s.Empty(again.Achievements)
}

func (s *Suite) TestDeleteUser() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	s.Require().NoError(s.Storage.DeleteUser(s.Ctx, user.ID))

	_, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Storage.GetUserByEmail(s.Ctx, user.Email)
	s.ErrorIs(err, model.ErrUserNotFound)

	users, err := s.Storage.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(users)
}

func (s *Suite) TestDeleteUserIsIdempotent() {
	s.NoError(s.Storage.DeleteUser(s.Ctx, "missing"))

	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))
	s.Require().NoError(s.Storage.DeleteUser(s.Ctx, user.ID))
	s.NoError(s.Storage.DeleteUser(s.Ctx, user.ID))
}

func (s *Suite) TestConcurrentUpdatesAreNotLost() {
	user := newUser(1)
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Storage.UpdateUser(s.Ctx, user.ID, func(u *model.User) error {
				u.PuzzleGames = append(u.PuzzleGames, model.PuzzleGame{
					ID:          model.GameID(fmt.Sprintf("g%d", i)),
					PuzzleScore: model.PuzzleScore{Turns: i},
				})
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.Storage.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Len(got.PuzzleGames, writers)
	s.Equal(user.Version+writers, got.Version)
}
