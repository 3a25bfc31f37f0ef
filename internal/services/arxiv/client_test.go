package arxiv_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"precis/internal/services/arxiv"
)

type listingEntry struct {
	id    string
	title string
}

func listingHTML(entries ...listingEntry) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><dl id=\"articles\">")
	for i, e := range entries {
		b.WriteString("<dt>")
		fmt.Fprintf(&b, "<a name=\"item%d\">[%d]</a> ", i+1, i+1)
		if e.id != "" {
			fmt.Fprintf(&b, "<a href=\"/abs/%s\" title=\"Abstract\">arXiv:%s</a> ", e.id, e.id)
			fmt.Fprintf(&b, "[<a href=\"/pdf/%s\" title=\"Download PDF\">pdf</a>]", e.id)
		}
		b.WriteString("</dt><dd><div class=\"meta\">")
		if e.title != "" {
			fmt.Fprintf(&b, "<div class=\"list-title mathjax\"><span class=\"descriptor\">Title:</span> %s</div>", e.title)
		}
		b.WriteString("<div class=\"list-authors\">Anonymous</div></div></dd>")
	}
	b.WriteString("</dl></body></html>")
	return b.String()
}

func TestFetchParsesListing(t *testing.T) {
	page := listingHTML(
		listingEntry{id: "2408.01001", title: "Grounded Retrieval for Agents"},
		listingEntry{id: "2408.01002", title: "Benchmarking Long-Context Reasoning"},
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/list/cs.AI/recent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers[0].ID != "2408.01001" || papers[0].Title != "Grounded Retrieval for Agents" {
		t.Fatalf("papers[0] = %+v", papers[0])
	}
	if papers[1].ID != "2408.01002" {
		t.Fatalf("papers[1] = %+v", papers[1])
	}
	if want := server.URL + "/pdf/2408.01001.pdf"; papers[0].PDFURL != want {
		t.Fatalf("PDFURL = %q, want %q", papers[0].PDFURL, want)
	}
}

func TestFetchDeduplicatesAcrossPages(t *testing.T) {
	recent := listingHTML(
		listingEntry{id: "2408.02001", title: "First"},
		listingEntry{id: "2408.02002", title: "Second"},
	)
	widened := listingHTML(
		listingEntry{id: "2408.02002", title: "Second"},
		listingEntry{id: "2408.02003", title: "Third"},
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			fmt.Fprint(w, recent)
			return
		}
		fmt.Fprint(w, widened)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := make([]string, 0, len(papers))
	for _, p := range papers {
		got = append(got, p.ID)
	}
	want := "2408.02001 2408.02002 2408.02003"
	if strings.Join(got, " ") != want {
		t.Fatalf("ids = %v, want %s", got, want)
	}
}

func TestFetchCapsAtMaxPapers(t *testing.T) {
	var requests int
	page := listingHTML(
		listingEntry{id: "2408.03001", title: "One"},
		listingEntry{id: "2408.03002", title: "Two"},
		listingEntry{id: "2408.03003", title: "Three"},
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 2})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers[0].ID != "2408.03001" || papers[1].ID != "2408.03002" {
		t.Fatalf("papers = %+v, want the first two entries", papers)
	}
	if requests != 1 {
		t.Fatalf("requests = %d, want 1 when the first page fills the budget", requests)
	}
}

func TestFetchFallsBackToPlaceholderTitle(t *testing.T) {
	page := listingHTML(listingEntry{id: "2408.04001"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	if papers[0].Title != "Paper-2408.04001" {
		t.Fatalf("title = %q, want placeholder", papers[0].Title)
	}
}

func TestFetchSkipsEntriesWithoutID(t *testing.T) {
	page := listingHTML(
		listingEntry{title: "Entry with no abstract link"},
		listingEntry{id: "2408.05001", title: "Kept"},
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "2408.05001" {
		t.Fatalf("papers = %+v, want only the entry with an id", papers)
	}
}

func TestFetchFirstPageFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error when the recent page fails")
	}
}

func TestFetchSecondPageFailureKeepsFirstPage(t *testing.T) {
	page := listingHTML(listingEntry{id: "2408.06001", title: "Survivor"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	papers, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "2408.06001" {
		t.Fatalf("papers = %+v, want first-page results kept", papers)
	}
}

func TestFetchSendsBrowserUserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		fmt.Fprint(w, listingHTML(listingEntry{id: "2408.07001", title: "UA Check"}))
	}))
	defer server.Close()

	client := arxiv.NewClient(arxiv.Config{BaseURL: server.URL, Listing: "cs.AI", MaxPapers: 100})
	if _, err := client.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if agent != arxiv.UserAgent {
		t.Fatalf("User-Agent = %q, want %q", agent, arxiv.UserAgent)
	}
}
