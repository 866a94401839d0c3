// Package archive checkpoints encoded actions to redis so episodes can be
// inspected or replayed after the fact. The stored form is the interchange
// JSON text, keyed by episode and step.
package archive

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/voltgrid/gridenv/grid"
)

type Store struct {
	cli *redis.Client
}

func NewStore(addr string) *Store {
	return &Store{
		cli: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func (s *Store) Close() error {
	return s.cli.Close()
}

// Ping checks the connection, used by callers to fail early.
func (s *Store) Ping(ctx context.Context) error {
	return s.cli.Ping(ctx).Err()
}

func stepKey(episode string, step int) string {
	return fmt.Sprintf("gridenv:episode:%s:step:%d", episode, step)
}

// NewEpisode returns a fresh episode identifier.
func (s *Store) NewEpisode() string {
	return uuid.NewString()
}

// Put stores one step's action under its episode.
func (s *Store) Put(ctx context.Context, episode string, step int, a *grid.Action) error {
	data, err := a.ToJSON()
	if err != nil {
		return err
	}
	if err := s.cli.Set(ctx, stepKey(episode, step), data, 0).Err(); err != nil {
		return err
	}
	return s.cli.RPush(ctx, fmt.Sprintf("gridenv:episode:%s:steps", episode), step).Err()
}

// Get decodes one archived step into an action from the given space.
func (s *Store) Get(ctx context.Context, space *grid.Space, episode string, step int) (*grid.Action, error) {
	data, err := s.cli.Get(ctx, stepKey(episode, step)).Bytes()
	if err != nil {
		return nil, err
	}
	return space.FromJSON(data)
}

// Episode returns every archived action of an episode in step order.
func (s *Store) Episode(ctx context.Context, space *grid.Space, episode string) ([]*grid.Action, error) {
	steps, err := s.cli.LRange(ctx, fmt.Sprintf("gridenv:episode:%s:steps", episode), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*grid.Action, 0, len(steps))
	for _, step := range steps {
		data, err := s.cli.Get(ctx, fmt.Sprintf("gridenv:episode:%s:step:%s", episode, step)).Bytes()
		if err != nil {
			return nil, err
		}
		a, err := space.FromJSON(data)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
