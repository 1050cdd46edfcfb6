package export

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// atomTimeFormat matches the +00:00 offset style expected by feed readers.
const atomTimeFormat = "2006-01-02T15:04:05+00:00"

const atomEntryTitleMax = 50

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string      `xml:"title"`
	Link      atomLink    `xml:"link"`
	ID        string      `xml:"id"`
	Published string      `xml:"published,omitempty"`
	Content   atomContent `xml:"content"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// renderAtom builds an Atom feed with one entry per post. Posts without a
// known publish time keep their entry but omit the published element.
func renderAtom(handle string, posts []types.Post, now time.Time) ([]byte, error) {
	feed := atomFeed{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   fmt.Sprintf("@%s tweets", handle),
		ID:      fmt.Sprintf("https://twitter.com/%s", handle),
		Updated: now.UTC().Format(atomTimeFormat),
	}

	for _, p := range posts {
		entry := atomEntry{
			Title:   truncateTitle(p.Text),
			Link:    atomLink{Href: p.PermanentURL},
			ID:      p.ID,
			Content: atomContent{Type: "html", Body: p.Text},
		}
		if p.HasTimestamp() {
			entry.Published = p.Timestamp.UTC().Format(atomTimeFormat)
		}
		feed.Entries = append(feed.Entries, entry)
	}

	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= atomEntryTitleMax {
		return s
	}
	return string(runes[:atomEntryTitleMax]) + "..."
}
