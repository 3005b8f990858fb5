package session

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvclassify/internal/classifier"
	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/upload"
)

func accepted(t *testing.T, name, body string) *upload.Accepted {
	t.Helper()
	acc, err := upload.NewCoordinator(0).Accept(upload.Selection{
		Name:    name,
		Size:    int64(len(body)),
		Content: strings.NewReader(body),
	})
	require.NoError(t, err)
	return acc
}

func response(t *testing.T, s string) *classifier.ClassifyResponse {
	t.Helper()
	var resp classifier.ClassifyResponse
	require.NoError(t, json.Unmarshal([]byte(s), &resp))
	return &resp
}

func TestReduce_FileAcceptedReplacesEverything(t *testing.T) {
	s := New("s1")
	s = Reduce(s, FileAccepted{Upload: accepted(t, "a.csv", "x\n1\n2")})
	s = Reduce(s, ClassifySucceeded{Generation: s.Generation, Response: response(t, `{"results":[{"x":"1"}]}`)})
	s = Reduce(s, EvaluateSucceeded{Generation: s.Generation, Metrics: &model.Metrics{Accuracy: 1}})
	s = Reduce(s, SearchChanged{Term: "1"})
	gen := s.Generation

	s = Reduce(s, FileAccepted{Upload: accepted(t, "b.csv", "y\n3")})

	require.True(t, s.HasFile())
	assert.Equal(t, "b.csv", s.File.Name)
	assert.Equal(t, []string{"y"}, s.Table.Columns)
	assert.Empty(t, s.Results)
	assert.Nil(t, s.Metrics)
	assert.Equal(t, "", s.View.Search)
	assert.Equal(t, gen+1, s.Generation)
	assert.Equal(t, "s1", s.ID)
	require.NotNil(t, s.Notice)
	assert.Equal(t, `File "b.csv" uploaded successfully!`, s.Notice.Message)
}

func TestReduce_Cleared(t *testing.T) {
	s := Reduce(New("s1"), FileAccepted{Upload: accepted(t, "a.csv", "x\n1")})
	s = Reduce(s, Cleared{})

	assert.False(t, s.HasFile())
	assert.False(t, s.Classified())
	assert.Equal(t, uint64(2), s.Generation)
	require.NotNil(t, s.Notice)
	assert.Equal(t, LevelInfo, s.Notice.Level)
	assert.Equal(t, "All data cleared", s.Notice.Message)
}

func TestReduce_ClassifyThenEvaluateFails(t *testing.T) {
	s := Reduce(New("s1"), FileAccepted{Upload: accepted(t, "a.csv", "x\n1\n2\n3\n4\n5")})
	gen := s.Generation

	s = Reduce(s, ClassifyStarted{Generation: gen})
	assert.True(t, s.Classifying)

	s = Reduce(s, ClassifySucceeded{Generation: gen, Response: response(t,
		`{"results":[{"x":"1"},{"x":"2"},{"x":"3"},{"x":"4"},{"x":"5"}],"total":5}`)})
	s = Reduce(s, EvaluateFailed{Generation: gen})

	assert.False(t, s.Classifying)
	assert.Len(t, s.Results, 5)
	assert.Nil(t, s.Metrics)
	assert.Contains(t, s.Meta, "total")
	require.NotNil(t, s.Notice)
	assert.Equal(t, "Successfully classified 5 rows", s.Notice.Message)
}

func TestReduce_ClassifyFailedKeepsPriorResults(t *testing.T) {
	s := Reduce(New("s1"), FileAccepted{Upload: accepted(t, "a.csv", "x\n1")})
	gen := s.Generation
	s = Reduce(s, ClassifySucceeded{Generation: gen, Response: response(t, `{"results":[{"x":"1"}]}`)})
	s = Reduce(s, EvaluateSucceeded{Generation: gen, Metrics: &model.Metrics{Accuracy: 0.5}})

	s = Reduce(s, ClassifyStarted{Generation: gen})
	s = Reduce(s, ClassifyFailed{Generation: gen, Notice: Notice{Level: LevelError, Message: "boom"}})

	assert.False(t, s.Classifying)
	assert.Len(t, s.Results, 1)
	require.NotNil(t, s.Metrics)
	assert.Equal(t, "boom", s.Notice.Message)
}

func TestReduce_StaleCompletionsIgnored(t *testing.T) {
	s := Reduce(New("s1"), FileAccepted{Upload: accepted(t, "a.csv", "x\n1")})
	stale := s.Generation
	s = Reduce(s, ClassifyStarted{Generation: stale})
	s = Reduce(s, FileAccepted{Upload: accepted(t, "b.csv", "y\n2")})

	before := s
	s = Reduce(s, ClassifySucceeded{Generation: stale, Response: response(t, `{"results":[{"x":"1"}]}`)})
	s = Reduce(s, EvaluateSucceeded{Generation: stale, Metrics: &model.Metrics{}})
	s = Reduce(s, ClassifyFailed{Generation: stale, Notice: Notice{Message: "late"}})
	s = Reduce(s, ClassifyStarted{Generation: stale})

	assert.Equal(t, before, s)
	assert.False(t, s.Classifying)
}

func TestReduce_ViewActions(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"results":[`)
	for i := range 25 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"n":`)
		b.WriteString(strings.Repeat("1", i+1))
		b.WriteByte('}')
	}
	b.WriteString(`]}`)

	s := Reduce(New("s1"), FileAccepted{Upload: accepted(t, "a.csv", "x\n1")})
	s = Reduce(s, ClassifySucceeded{Generation: s.Generation, Response: response(t, b.String())})

	s = Reduce(s, PageRequested{Page: 3})
	assert.Equal(t, 3, s.View.Page)
	s = Reduce(s, PageRequested{Page: 7})
	assert.Equal(t, 3, s.View.Page)

	s = Reduce(s, SortRequested{Column: "n"})
	assert.Equal(t, "n", s.View.SortColumn)
	assert.Equal(t, 3, s.View.Page)

	s = Reduce(s, SearchChanged{Term: "111"})
	assert.Equal(t, 1, s.View.Page)
	assert.Equal(t, "111", s.View.Search)
}

func TestReduce_Notices(t *testing.T) {
	s := Reduce(New("s1"), NoticeRaised{Notice: Notice{Level: LevelError, Message: "No results to export", Code: "EXP001"}})
	require.NotNil(t, s.Notice)
	assert.Equal(t, "EXP001", s.Notice.Code)

	shown := *s.Notice
	s = Reduce(s, NoticeShown{Notice: shown})
	assert.Nil(t, s.Notice)
}

func TestReduce_NoticeShownIgnoresReplacedNotice(t *testing.T) {
	rendered := Notice{Level: LevelSuccess, Message: "File \"a.csv\" uploaded successfully!"}
	s := Reduce(New("s1"), NoticeRaised{Notice: rendered})
	s = Reduce(s, NoticeRaised{Notice: Notice{Level: LevelSuccess, Message: "Successfully classified 3 rows"}})

	s = Reduce(s, NoticeShown{Notice: rendered})
	require.NotNil(t, s.Notice)
	assert.Equal(t, "Successfully classified 3 rows", s.Notice.Message)

	s = Reduce(New("s2"), NoticeShown{Notice: rendered})
	assert.Nil(t, s.Notice)
}

func TestStore_CreateGetUpdate(t *testing.T) {
	st := NewStore(time.Minute)

	s := st.Create()
	require.NotEmpty(t, s.ID)

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	updated, err := st.Dispatch(s.ID, SearchChanged{Term: "q"})
	require.NoError(t, err)
	assert.Equal(t, "q", updated.View.Search)

	_, err = st.Dispatch("missing", Cleared{})
	assert.ErrorIs(t, err, ErrNotFound)

	st.Delete(s.ID)
	_, ok = st.Get(s.ID)
	assert.False(t, ok)
}

func TestStore_UpdateCannotChangeID(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create()

	got, err := st.Update(s.ID, func(State) State { return New("other") })
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := NewStore(10*time.Minute, WithClock(clock))

	a := st.Create()
	now = now.Add(6 * time.Minute)
	b := st.Create()

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, st.Sweep(now))
	_, ok := st.Get(a.ID)
	assert.False(t, ok)
	_, ok = st.Get(b.ID)
	assert.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok = st.Get(b.ID)
	assert.False(t, ok, "expired session is not returned before a sweep")

	fresh := st.Ensure(b.ID)
	assert.NotEqual(t, b.ID, fresh.ID)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create()

	var wg sync.WaitGroup
	for range 51 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Dispatch(s.ID, SortRequested{Column: "a"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := st.Get(s.ID)
	assert.Equal(t, "a", got.View.SortColumn)
	assert.False(t, got.View.SortDesc, "one set plus an even number of toggles ends ascending")
}
