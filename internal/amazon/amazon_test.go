package amazon

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/lepinkainen/kindlecovers/internal/errors"
	"github.com/lepinkainen/kindlecovers/internal/fetcher"
	"github.com/lepinkainen/kindlecovers/internal/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body      string
	err       error
	requested []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (*fetcher.Page, error) {
	s.requested = append(s.requested, rawURL)
	if s.err != nil {
		return nil, s.err
	}
	return &fetcher.Page{RequestURL: rawURL, URL: rawURL, StatusCode: 200, Body: []byte(s.body)}, nil
}

const modernListPage = `<html><body>
<ul id="atfResults" class="s-result-list s-col-1">
  <li class="s-result-item" data-asin="0441013597">
    <h2 class="s-access-title">The Great Novel</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe</span></div>
    <a class="a-link-normal a-text-bold" href="#">Paperback</a>
  </li>
  <li class="s-result-item" data-asin="B00TEST001">
    <h2 class="s-access-title">The Great Novel — A Novel</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe</span></div>
    <a class="a-link-normal a-text-bold" href="#">Kindle Edition</a>
  </li>
  <li class="s-result-item" data-asin="B00OTHER01">
    <h2 class="s-access-title">A Different Story</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe</span></div>
    <a class="a-link-normal a-text-bold" href="#">Kindle Edition</a>
  </li>
  <li class="s-result-item" data-asin="1234567890">
    <h2 class="s-access-title">The Great Novel (Audio)</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe</span></div>
    <a class="a-link-normal a-text-bold" href="#">Kindle Edition</a>
  </li>
  <li class="s-result-item" data-asin="B00TEST002">
    <h2 class="s-access-title">The Great Novel: Anniversary Edition</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe</span></div>
    <a class="a-link-normal a-text-bold" href="#">Kindle Edition</a>
  </li>
  <li class="s-result-item" data-asin="B00TEST003">
    <h2 class="s-access-title">The Great Novel</h2>
    <div class="a-row a-spacing-none"><span>by </span><span>Jane Doe and others</span></div>
    <a class="a-link-normal a-text-bold" href="#">Kindle Edition</a>
  </li>
</ul>
</body></html>`

const gridPage = `<html><body>
<div id="atfResults" class="grid results">
  <div class="prod celwidget" name="B00GRID001">
    <h3 class="newaps"><a href="#"><span class="lrg">The Great Novel</span></a></h3>
    <span class="ptBrand">by Jane Doe</span>
    <span class="binding">Kindle Edition</span>
  </div>
</div>
</body></html>`

const inlineGridPage = `<html><body>
<div id="atfResults" class="ilresults">
  <div class="ilo2" name="B00INLN001">
    <div class="ilt2">The Great Novel</div>
    <div class="ilt3">Jane Doe</div>
    <div class="ilf">Kindle Edition</div>
  </div>
</div>
</body></html>`

const classicListPage = `<html><body>
<div id="atfResults" class="list results">
  <div class="prod" name="B00CLAS001">
    <h3 class="newaps"><a href="#"><span class="lrg">The Great Novel</span></a></h3>
    <span class="ptBrand">by Jane Doe</span>
    <span class="bld">Kindle Edition</span>
  </div>
</div>
</body></html>`

var greatNovelAuthors = []string{"Jane Doe"}

func TestSearchURL(t *testing.T) {
	m := New(nil, WithBaseURL("https://amz.example/"))

	got := m.SearchURL("The Great Novel", []string{"Jane Doe", "John Smith"})
	assert.Equal(t, "https://amz.example/s/?url=search-alias%3Ddigital-text&field-keywords=Jane+Doe+The+Great+Novel", got)
}

func TestSearchByTitleAuthorLayouts(t *testing.T) {
	tests := []struct {
		name string
		page string
		want []string
	}{
		{name: "modern list", page: modernListPage, want: []string{"B00TEST001", "B00TEST002"}},
		{name: "grid", page: gridPage, want: []string{"B00GRID001"}},
		{name: "inline grid", page: inlineGridPage, want: []string{"B00INLN001"}},
		{name: "classic list", page: classicListPage, want: []string{"B00CLAS001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{body: tt.page}
			m := New(f)

			got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, f.requested, 1)
		})
	}
}

func TestSearchByTitleAuthorRejectsOtherAuthor(t *testing.T) {
	m := New(&stubFetcher{body: gridPage})

	got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", []string{"John Smith"}, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchByTitleAuthorMaxResults(t *testing.T) {
	tests := []struct {
		name       string
		maxResults int
		want       []string
	}{
		{name: "one", maxResults: 1, want: []string{"B00TEST001"}},
		{name: "default", maxResults: 0, want: []string{"B00TEST001", "B00TEST002"}},
		{name: "more than available", maxResults: 10, want: []string{"B00TEST001", "B00TEST002", "B00TEST003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&stubFetcher{body: modernListPage})
			got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, tt.maxResults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchByTitleAuthorMatcherDefaultMax(t *testing.T) {
	m := New(&stubFetcher{body: modernListPage}, WithMaxResults(3))

	got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearchByTitleAuthorFuzzyPolicy(t *testing.T) {
	m := New(&stubFetcher{body: gridPage}, WithPolicy(matching.Fuzzy{MaxDistance: 1}))

	got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", []string{"Jane Dow"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B00GRID001"}, got)
}

func TestSearchByTitleAuthorSoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr error
	}{
		{name: "empty body", page: "  \n", wantErr: ErrNoResults},
		{name: "no container", page: `<html><body><div id="noResultsTitle">Nothing</div></body></html>`, wantErr: ErrNoResults},
		{name: "unknown layout", page: `<html><body><div id="atfResults" class="carousel"></div></body></html>`, wantErr: ErrUnknownLayout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&stubFetcher{body: tt.page})
			got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 2)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, got)
		})
	}
}

func TestSearchByTitleAuthorBotChallenge(t *testing.T) {
	page := `<html><body><form method="get" action="/errors/validateCaptcha">
<input id="captchacharacters" name="field-keywords"></form></body></html>`
	m := New(&stubFetcher{body: page})

	got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsBotChallengeError(err))
	assert.Empty(t, got)
}

func TestIsBotChallengePage(t *testing.T) {
	captcha := &fetcher.Page{Body: []byte(`<form action="/errors/validateCaptcha"></form>`)}
	field := &fetcher.Page{Body: []byte(`<input id="captchacharacters">`)}
	results := &fetcher.Page{Body: []byte(gridPage)}

	assert.True(t, IsBotChallengePage(captcha))
	assert.True(t, IsBotChallengePage(field))
	assert.False(t, IsBotChallengePage(results))
}

func TestSearchByTitleAuthorRequiresAuthor(t *testing.T) {
	f := &stubFetcher{body: gridPage}
	m := New(f)

	for _, authors := range [][]string{nil, {""}, {"   "}} {
		got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", authors, 2)
		require.ErrorIs(t, err, ErrNoAuthor)
		assert.Empty(t, got)
	}
	assert.Empty(t, f.requested)
}

func TestSearchByTitleAuthorFetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	m := New(&stubFetcher{err: fetchErr})

	_, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 2)
	require.ErrorIs(t, err, fetchErr)
}

type panickingPolicy struct{ matching.Containment }

func (panickingPolicy) AuthorMatches(string, []string) bool { panic("boom") }

func TestSearchByTitleAuthorRecoversPanic(t *testing.T) {
	m := New(&stubFetcher{body: gridPage}, WithPolicy(panickingPolicy{}))

	got, err := m.SearchByTitleAuthor(context.Background(), "The Great Novel", greatNovelAuthors, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, got)
}
