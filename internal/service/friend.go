package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// FriendsOverview is everything the friends page shows at once.
type FriendsOverview struct {
	Friends  []model.UserProfile  `json:"friends"`
	Requests model.FriendRequests `json:"requests"`
}

// FriendCollection is a friend's profile together with their recipes.
type FriendCollection struct {
	Profile *model.UserProfile `json:"profile"`
	Recipes []model.Recipe     `json:"recipes"`
}

// FriendService joins independent friend graph reads.
type FriendService struct {
	graph    FriendGraph
	recipes  FriendRecipes
	identity auth.Provider
	log      logging.Logger
}

var _ IFriendService = (*FriendService)(nil)

func NewFriendService(graph FriendGraph, recipes FriendRecipes, identity auth.Provider, log logging.Logger) *FriendService {
	return &FriendService{
		graph:    graph,
		recipes:  recipes,
		identity: identity,
		log:      log.With("component", "friend_service"),
	}
}

// FindPeople searches profiles by display name, leaving out the caller and
// people who are already friends.
func (s *FriendService) FindPeople(ctx context.Context, query string) ([]model.UserProfile, error) {
	uid, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, model.ErrNotAuthenticated
	}

	var found, friends []model.UserProfile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		found, err = s.graph.Search(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		friends, err = s.graph.ListFriends(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	exclude := make(map[uuid.UUID]bool, len(friends)+1)
	exclude[uid] = true
	for _, f := range friends {
		exclude[f.ID] = true
	}

	people := make([]model.UserProfile, 0, len(found))
	for _, p := range found {
		if !exclude[p.ID] {
			people = append(people, p)
		}
	}
	return people, nil
}

// Overview loads friends and pending requests concurrently.
func (s *FriendService) Overview(ctx context.Context) (FriendsOverview, error) {
	var out FriendsOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Friends, err = s.graph.ListFriends(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Requests, err = s.graph.ListRequests(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return FriendsOverview{}, err
	}
	return out, nil
}

// FriendCollection loads a friend's recipes and profile concurrently. The
// recipe read enforces the friendship.
func (s *FriendService) FriendCollection(ctx context.Context, friendID uuid.UUID) (FriendCollection, error) {
	var out FriendCollection
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Recipes, err = s.recipes.ListForFriend(gctx, friendID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Profile, err = s.graph.GetProfile(gctx, friendID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Debug(ctx, "failed to load friend collection", "friend_id", friendID, "error", err)
		return FriendCollection{}, err
	}
	if out.Profile == nil {
		out.Profile = &model.UserProfile{ID: friendID}
	}
	return out, nil
}
