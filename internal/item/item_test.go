package item

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestIdentifyDeterministic(t *testing.T) {
	t.Parallel()
	a := Identify(CategoryArticle, "Go 1.24 released", "https://go.dev/blog/go1.24")
	b := Identify(CategoryArticle, "Go 1.24 released", "https://go.dev/blog/go1.24")
	if a != b {
		t.Fatalf("Identify not stable: %s != %s", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("expected 40 hex chars, got %d (%s)", len(a), a)
	}
}

func TestIdentifyMatchesDocumentedScheme(t *testing.T) {
	t.Parallel()
	sum := sha1.Sum([]byte("article" + "Title" + "https://x.test/a"))
	want := hex.EncodeToString(sum[:])
	if got := Identify(CategoryArticle, "Title", "https://x.test/a"); got != want {
		t.Fatalf("Identify = %s, want %s", got, want)
	}
}

func TestIdentifyFieldSensitivity(t *testing.T) {
	t.Parallel()
	base := Identify(CategoryArticle, "title", "https://x.test/1")
	tests := []struct {
		name  string
		cat   Category
		title string
		link  string
	}{
		{name: "category", cat: CategoryQuote, title: "title", link: "https://x.test/1"},
		{name: "title", cat: CategoryArticle, title: "title!", link: "https://x.test/1"},
		{name: "link", cat: CategoryArticle, title: "title", link: "https://x.test/2"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Identify(tt.cat, tt.title, tt.link); got == base {
				t.Fatalf("changing %s did not change id", tt.name)
			}
		})
	}
}

func TestCrossCategoryNoCollision(t *testing.T) {
	t.Parallel()
	q := New(CategoryQuote, "", "same text", "", "", "")
	f := New(CategoryFact, "", "same text", "", "", "")
	if q.ID == f.ID {
		t.Fatal("items from different categories must not share an id")
	}
}

func TestNewTrimsAndValidates(t *testing.T) {
	t.Parallel()
	it := New(CategoryArticle, " Tech ", "  Headline ", " https://x.test ", "", "  keep summary as is ")
	if it.Title != "Headline" || it.Link != "https://x.test" || it.Source != "Tech" {
		t.Fatalf("fields not trimmed: %+v", it)
	}
	if it.Summary != "  keep summary as is " {
		t.Fatalf("summary must be stored untouched, got %q", it.Summary)
	}
	if it.ID != Identify(CategoryArticle, "Headline", "https://x.test") {
		t.Fatal("id must be derived from trimmed fields")
	}
	if !it.Valid() {
		t.Fatal("expected valid item")
	}
	if New(CategoryArticle, "Tech", "   ", "https://x.test", "", "").Valid() {
		t.Fatal("empty title must be invalid")
	}
}

func TestPreRendered(t *testing.T) {
	t.Parallel()
	if CategoryArticle.PreRendered() {
		t.Fatal("articles are rendered by the formatter")
	}
	for _, c := range []Category{CategoryQuote, CategoryFact, CategoryTip} {
		if !c.PreRendered() {
			t.Fatalf("%s should be pre-rendered", c)
		}
	}
}
