// Package feed extracts video notifications from YouTube's WebSub Atom
// payloads. YouTube uses Atom 1.0 with its own namespace for video and
// channel IDs, and the tombstones namespace for deletion markers.
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrNoEntry is returned when a notification payload carries no usable
// <entry> element, including entries missing required fields.
var ErrNoEntry = errors.New("atom feed: no usable entry")

// Feed is the top-level document the hub delivers. A payload contains either
// one or more entries or a single deleted-entry tombstone, never both.
type Feed struct {
	XMLName xml.Name      `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []Entry       `xml:"entry"`
	Deleted *DeletedEntry `xml:"http://purl.org/atompub/tombstones/1.0 deleted-entry"`
}

// Entry is a single video entry in the feed.
type Entry struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title     string `xml:"title"`
	Link      Link   `xml:"link"`
	Author    Author `xml:"author"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

// Link carries the alternate link to the video watch page.
type Link struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Author is the channel that published the entry.
type Author struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

// DeletedEntry marks a previously announced video as removed.
type DeletedEntry struct {
	Ref  string `xml:"ref,attr"`
	When string `xml:"when,attr"`
}

// Video is the normalized notification record extracted from one entry.
// Published and Updated stay in the feed's native timestamp format; the
// protocol treats them as opaque strings.
type Video struct {
	VideoID     string
	Title       string
	Link        string
	ChannelID   string
	ChannelName string
	ChannelLink string
	Published   string
	Updated     string
	Deleted     bool
}

// Parse decodes a raw notification payload and extracts the first entry.
// A tombstone payload yields a Video with only Deleted set. Hubs may batch
// several entries into one delivery; entries past the first are dropped.
func Parse(raw []byte) (*Video, error) {
	var f Feed
	if err := xml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal atom feed: %w", err)
	}

	if f.Deleted != nil {
		return &Video{Deleted: true}, nil
	}

	if len(f.Entries) == 0 {
		return nil, ErrNoEntry
	}

	entry := f.Entries[0]
	if entry.VideoID == "" {
		return nil, fmt.Errorf("%w: missing video id", ErrNoEntry)
	}
	if entry.ChannelID == "" {
		return nil, fmt.Errorf("%w: missing channel id", ErrNoEntry)
	}
	if entry.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrNoEntry)
	}
	if entry.Published == "" || entry.Updated == "" {
		return nil, fmt.Errorf("%w: missing timestamps", ErrNoEntry)
	}

	link := entry.Link.Href
	if link == "" {
		link = fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.VideoID)
	}

	return &Video{
		VideoID:     entry.VideoID,
		Title:       entry.Title,
		Link:        link,
		ChannelID:   entry.ChannelID,
		ChannelName: entry.Author.Name,
		ChannelLink: entry.Author.URI,
		Published:   entry.Published,
		Updated:     entry.Updated,
	}, nil
}
