// ABOUTME: OPML subscription list parsing for the import command
// ABOUTME: Flattens outline trees into feeds with their folder names

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Document is a parsed OPML subscription list.
type Document struct {
	Title    string
	Outlines []Outline
}

// Outline is a node in the OPML tree, either a folder (with Children) or a
// feed (with XMLURL).
type Outline struct {
	Text     string
	Title    string
	Type     string
	XMLURL   string
	Children []Outline
}

// Feed is one subscription with the folder it was filed under.
type Feed struct {
	URL    string
	Title  string
	Folder string
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// Parse reads OPML data from an io.Reader and returns a Document
func Parse(r io.Reader) (*Document, error) {
	var opml opmlXML
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&opml); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	doc := &Document{
		Title:    opml.Head.Title,
		Outlines: make([]Outline, len(opml.Body.Outlines)),
	}

	for i, outline := range opml.Body.Outlines {
		doc.Outlines[i] = convertOutline(outline)
	}

	return doc, nil
}

// ParseFile reads OPML data from a file and returns a Document
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// AllFeeds returns a flat list of every feed in the document. Feeds nested
// in folders carry the name of their nearest enclosing folder.
func (d *Document) AllFeeds() []Feed {
	feeds := make([]Feed, 0, len(d.Outlines))
	for _, outline := range d.Outlines {
		feeds = append(feeds, collectFeeds(outline, "")...)
	}
	return feeds
}

func convertOutline(x outlineXML) Outline {
	o := Outline{
		Text:     x.Text,
		Title:    x.Title,
		Type:     x.Type,
		XMLURL:   x.XMLURL,
		Children: make([]Outline, len(x.Children)),
	}

	for i, child := range x.Children {
		o.Children[i] = convertOutline(child)
	}

	return o
}

func collectFeeds(outline Outline, folder string) []Feed {
	var feeds []Feed

	if outline.XMLURL != "" {
		feeds = append(feeds, Feed{
			URL:    outline.XMLURL,
			Title:  outlineTitle(outline),
			Folder: folder,
		})
	}

	childFolder := folder
	if outline.XMLURL == "" && len(outline.Children) > 0 {
		childFolder = outline.Text
	}

	for _, child := range outline.Children {
		feeds = append(feeds, collectFeeds(child, childFolder)...)
	}

	return feeds
}

func outlineTitle(outline Outline) string {
	if outline.Title != "" {
		return outline.Title
	}
	return outline.Text
}
