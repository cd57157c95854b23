package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewise-backend/internal/tasks"
)

func TestPrioritizeOrdersByScoreDescending(t *testing.T) {
	ts := []tasks.Task{pendingTask(1, 60), pendingTask(2, 60), pendingTask(3, 60)}
	rec := &fakeRecommender{
		prioritize: func([]tasks.Task) ([]PrioritizedTask, error) {
			return []PrioritizedTask{
				{TaskID: 1, PriorityScore: 40},
				{TaskID: 2, PriorityScore: 90},
				{TaskID: 3, PriorityScore: 70},
			}, nil
		},
	}
	p := &Prioritizer{Recommender: rec, Tasks: &fakeTasks{pending: ts}}

	ranked, err := p.Prioritize(context.Background(), 1, ts, nil, false)

	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].TaskID)
	assert.Equal(t, 3, ranked[1].TaskID)
	assert.Equal(t, 1, ranked[2].TaskID)
}

func TestPrioritizeStableOnTies(t *testing.T) {
	ts := []tasks.Task{pendingTask(1, 60), pendingTask(2, 60), pendingTask(3, 60)}
	rec := &fakeRecommender{
		prioritize: func([]tasks.Task) ([]PrioritizedTask, error) {
			return []PrioritizedTask{
				{TaskID: 1, PriorityScore: 50},
				{TaskID: 2, PriorityScore: 50},
				{TaskID: 3, PriorityScore: 50},
			}, nil
		},
	}
	p := &Prioritizer{Recommender: rec, Tasks: &fakeTasks{pending: ts}}

	ranked, err := p.Prioritize(context.Background(), 1, ts, nil, false)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].TaskID, ranked[1].TaskID, ranked[2].TaskID})
}

func TestPrioritizeErrorPropagates(t *testing.T) {
	ts := []tasks.Task{pendingTask(1, 60)}
	rec := &fakeRecommender{
		prioritize: func([]tasks.Task) ([]PrioritizedTask, error) {
			return nil, ErrRecommendationUnavailable
		},
	}
	p := &Prioritizer{Recommender: rec, Tasks: &fakeTasks{pending: ts}}

	_, err := p.Prioritize(context.Background(), 1, ts, nil, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecommendationUnavailable)
}

type priorityRecorder struct {
	fakeTasks
	priorities map[int]int
}

func (p *priorityRecorder) UpdatePriority(_ context.Context, _, taskID, priority int) error {
	if p.priorities == nil {
		p.priorities = map[int]int{}
	}
	p.priorities[taskID] = priority
	return nil
}

func TestPrioritizeWriteBack(t *testing.T) {
	ts := []tasks.Task{pendingTask(1, 60), pendingTask(2, 60), pendingTask(3, 60)}
	rec := &fakeRecommender{
		prioritize: func([]tasks.Task) ([]PrioritizedTask, error) {
			return []PrioritizedTask{
				{TaskID: 1, PriorityScore: 85},
				{TaskID: 2, PriorityScore: 55},
				{TaskID: 3, PriorityScore: 10},
			}, nil
		},
	}
	store := &priorityRecorder{}
	p := &Prioritizer{Recommender: rec, Tasks: store}

	_, err := p.Prioritize(context.Background(), 1, ts, []string{"ship the release"}, true)

	require.NoError(t, err)
	// High scores land on high (numerically low) priorities.
	assert.Equal(t, 1, store.priorities[1])
	assert.Equal(t, 3, store.priorities[2])
	assert.Equal(t, 5, store.priorities[3])
}

func TestPriorityFromScoreBuckets(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{100, 1}, {80, 1}, {79.6, 1},
		{79.4, 2}, {60, 2},
		{59, 3}, {40, 3},
		{39, 4}, {20, 4},
		{19, 5}, {0, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, priorityFromScore(c.score), "score %v", c.score)
	}
}
