package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rmay/venlang/pkg/value"
)

func TestSpawnReturnsRunResult(t *testing.T) {
	s := New(context.Background())
	v, err := s.Spawn(func() (value.Value, error) {
		return value.NumFromInt64(7), nil
	})
	require.NoError(t, err)
	require.Equal(t, "7", v.String())
	require.NoError(t, s.Wait())
}

func TestSpawnPropagatesRunError(t *testing.T) {
	s := New(context.Background())
	_, err := s.Spawn(func() (value.Value, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
}

func TestSpawnSerializesConcurrentTasks(t *testing.T) {
	s := New(context.Background())
	var active int
	var maxActive int
	mark := func() (value.Value, error) {
		active++
		if active > maxActive {
			maxActive = active
		}
		active--
		return value.Unit, nil
	}
	for i := 0; i < 5; i++ {
		_, err := s.Spawn(mark)
		require.NoError(t, err)
	}
	require.NoError(t, s.Wait())
	require.Equal(t, 1, maxActive)
}

func TestTaskIDIsValidUUID(t *testing.T) {
	task := Task{ID: uuid.NewString()}
	_, err := uuid.Parse(task.ID)
	require.NoError(t, err)
}
