package analysis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paper-analyzer/internal/events"
	"paper-analyzer/internal/llm"
)

var figureInPrompt = regexp.MustCompile(`(what|by) figure (\d+)`)

// parseFigurePrompt returns the figure number and which question a prompt asks.
func parseFigurePrompt(p string) (int, string) {
	m := figureInPrompt.FindStringSubmatch(p)
	if m == nil {
		return 0, ""
	}
	n, _ := strconv.Atoi(m[2])
	if m[1] == "what" {
		return n, "information"
	}
	return n, "connection"
}

// echoClient answers each figure prompt with "<kind> <n>".
func echoClient() llm.ClientFunc {
	return func(_ context.Context, req llm.Request) (string, error) {
		n, kind := parseFigurePrompt(req.Prompt)
		if n == 0 {
			return "", fmt.Errorf("unexpected prompt")
		}
		return fmt.Sprintf("%s %d", kind, n), nil
	}
}

type recordingPublisher struct {
	mu        sync.Mutex
	events    []events.Progress
	onPublish func(events.Progress)
}

func (r *recordingPublisher) Publish(_ context.Context, p events.Progress) error {
	r.mu.Lock()
	r.events = append(r.events, p)
	r.mu.Unlock()
	if r.onPublish != nil {
		r.onPublish(p)
	}
	return nil
}

func (r *recordingPublisher) all() []events.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Progress(nil), r.events...)
}

func TestProcessReturnsOneAnswerPerFigure(t *testing.T) {
	for _, total := range []int{0, 1, 2, 5, 17} {
		t.Run(strconv.Itoa(total), func(t *testing.T) {
			pub := &recordingPublisher{}
			exec := NewExecutor(echoClient())
			proc := &FigureProcessor{Exec: exec, Workers: 4, Events: pub, RunID: "run"}

			answers, err := proc.Process(context.Background(), testDoc, total)
			require.NoError(t, err)
			require.Len(t, answers, total)
			for i, a := range answers {
				assert.Equal(t, i, a.Index)
				assert.Equal(t, fmt.Sprintf("information %d", i+1), a.Information.Content())
				assert.Equal(t, fmt.Sprintf("connection %d", i+1), a.Connection.Content())
			}
			assert.EqualValues(t, 2*total, exec.Calls())

			evs := pub.all()
			require.Len(t, evs, total)
			figures := map[int]bool{}
			completed := map[int]bool{}
			for _, ev := range evs {
				assert.Equal(t, total, ev.Total)
				assert.Equal(t, events.PhaseFigures, ev.Phase)
				assert.Equal(t, "run", ev.RunID)
				figures[ev.Figure] = true
				completed[ev.Completed] = true
			}
			for n := 1; n <= total; n++ {
				assert.True(t, figures[n], "no progress for figure %d", n)
				assert.True(t, completed[n], "no progress with completed=%d", n)
			}
		})
	}
}

func TestProcessOrderIndependentOfCompletion(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once

	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		n, kind := parseFigurePrompt(req.Prompt)
		if n == 1 && kind == "information" {
			// Figure 1 cannot answer until figure 2 has been reported done.
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return fmt.Sprintf("%s %d", kind, n), nil
	})

	pub := &recordingPublisher{onPublish: func(p events.Progress) {
		if p.Figure == 2 {
			once.Do(func() { close(release) })
		}
	}}
	proc := &FigureProcessor{Exec: NewExecutor(client), Workers: 2, Events: pub}
	answers, err := proc.Process(context.Background(), testDoc, 2)
	require.NoError(t, err)

	evs := pub.all()
	require.Len(t, evs, 2)
	assert.Equal(t, 2, evs[0].Figure, "figure 2 should finish first")
	assert.Equal(t, 1, evs[1].Figure)

	require.Len(t, answers, 2)
	assert.Equal(t, 0, answers[0].Index)
	assert.Equal(t, "information 1", answers[0].Information.Content())
	assert.Equal(t, 1, answers[1].Index)
	assert.Equal(t, "connection 2", answers[1].Connection.Content())
}

func TestProcessAbortsOnFirstFailure(t *testing.T) {
	errBoom := errors.New("boom")
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		n, kind := parseFigurePrompt(req.Prompt)
		if n == 2 {
			return "", errBoom
		}
		return fmt.Sprintf("%s %d", kind, n), nil
	})

	proc := &FigureProcessor{Exec: NewExecutor(client), Workers: 3}
	answers, err := proc.Process(context.Background(), testDoc, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom), "got %v", err)
	assert.Contains(t, err.Error(), "figure 2")
	assert.Nil(t, answers, "partial results must be discarded")
}

func TestProcessSevenFiguresIssuesFourteenQueries(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "what figure") && req.Schema == nil
	})).Return("info", nil).Times(7)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "illustrated by figure") && req.Schema == nil
	})).Return("conn", nil).Times(7)

	exec := NewExecutor(client)
	proc := &FigureProcessor{Exec: exec}
	answers, err := proc.Process(context.Background(), testDoc, 7)
	require.NoError(t, err)
	assert.Len(t, answers, 7)

	client.AssertNumberOfCalls(t, "Complete", 14)
	assert.EqualValues(t, 14, exec.Calls())
	client.AssertExpectations(t)
}

func TestProcessRejectsNegativeTotal(t *testing.T) {
	proc := &FigureProcessor{Exec: NewExecutor(echoClient())}
	_, err := proc.Process(context.Background(), testDoc, -1)
	assert.Error(t, err)
}

func TestProcessPublishErrorIsNotFatal(t *testing.T) {
	pub := new(events.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down")).Times(2)

	proc := &FigureProcessor{Exec: NewExecutor(echoClient()), Events: pub}
	answers, err := proc.Process(context.Background(), testDoc, 2)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
	pub.AssertExpectations(t)
}

func TestExpandFigures(t *testing.T) {
	client := llm.ClientFunc(func(_ context.Context, req llm.Request) (string, error) {
		const marker = "Given this answer:\n"
		i := strings.Index(req.Prompt, marker)
		if i < 0 {
			return "", fmt.Errorf("not an expansion prompt")
		}
		rest := req.Prompt[i+len(marker):]
		return "expanded " + rest[:strings.IndexByte(rest, '\n')], nil
	})

	answers := []FigureAnswer{
		{Index: 0, Information: llm.Raw{Text: "info 1"}, Connection: llm.Raw{Text: "conn 1"}},
		{Index: 1, Information: llm.Raw{Text: "info 2"}, Connection: llm.Raw{Text: "conn 2"}},
	}
	pub := &recordingPublisher{}
	exec := NewExecutor(client)
	proc := &FigureProcessor{Exec: exec, Events: pub}

	expanded, err := proc.Expand(context.Background(), testDoc, answers)
	require.NoError(t, err)
	require.Len(t, expanded, 2)
	assert.Equal(t, "expanded info 1", expanded[0].Information.Content())
	assert.Equal(t, "expanded conn 2", expanded[1].Connection.Content())
	assert.Equal(t, 1, expanded[1].Index)
	assert.EqualValues(t, 4, exec.Calls())

	for _, ev := range pub.all() {
		assert.Equal(t, events.PhaseExpansion, ev.Phase)
	}
}

func TestDefaultWorkers(t *testing.T) {
	n := DefaultWorkers()
	assert.GreaterOrEqual(t, n, 5)
	assert.LessOrEqual(t, n, 32)
	assert.Equal(t, 3, (&FigureProcessor{Workers: 3}).workers())
}
