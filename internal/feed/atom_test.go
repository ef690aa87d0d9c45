package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		want        *Video
		wantErr     bool
		errContains string
	}{
		{
			name: "full entry",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>dQw4w9WgXcQ</yt:videoId>
    <yt:channelId>UCuAXFkgsw1L7xaCfnd5JJOw</yt:channelId>
    <title>Never Gonna Give You Up</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"/>
    <author>
      <name>Rick Astley</name>
      <uri>https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw</uri>
    </author>
    <published>2009-10-25T06:57:33+00:00</published>
    <updated>2022-03-15T12:00:00+00:00</updated>
  </entry>
</feed>`,
			want: &Video{
				VideoID:     "dQw4w9WgXcQ",
				Title:       "Never Gonna Give You Up",
				Link:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				ChannelID:   "UCuAXFkgsw1L7xaCfnd5JJOw",
				ChannelName: "Rick Astley",
				ChannelLink: "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
				Published:   "2009-10-25T06:57:33+00:00",
				Updated:     "2022-03-15T12:00:00+00:00",
			},
		},
		{
			name: "missing link falls back to watch URL",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>test123</yt:videoId>
    <yt:channelId>UCchannel123</yt:channelId>
    <title>Test Video</title>
    <published>2025-01-15T10:00:00+00:00</published>
    <updated>2025-01-15T11:00:00+00:00</updated>
  </entry>
</feed>`,
			want: &Video{
				VideoID:   "test123",
				Title:     "Test Video",
				Link:      "https://www.youtube.com/watch?v=test123",
				ChannelID: "UCchannel123",
				Published: "2025-01-15T10:00:00+00:00",
				Updated:   "2025-01-15T11:00:00+00:00",
			},
		},
		{
			name: "title with escaped characters",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>abc123</yt:videoId>
    <yt:channelId>UCtest</yt:channelId>
    <title>Test &amp; Demo &lt;Special&gt;</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <published>2025-01-15T10:00:00+00:00</published>
    <updated>2025-01-15T11:00:00+00:00</updated>
  </entry>
</feed>`,
			want: &Video{
				VideoID:   "abc123",
				Title:     "Test & Demo <Special>",
				Link:      "https://www.youtube.com/watch?v=abc123",
				ChannelID: "UCtest",
				Published: "2025-01-15T10:00:00+00:00",
				Updated:   "2025-01-15T11:00:00+00:00",
			},
		},
		{
			name: "multiple entries keep only the first",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>first</yt:videoId>
    <yt:channelId>UCtest</yt:channelId>
    <title>First</title>
    <published>2025-01-15T10:00:00+00:00</published>
    <updated>2025-01-15T10:00:00+00:00</updated>
  </entry>
  <entry>
    <yt:videoId>second</yt:videoId>
    <yt:channelId>UCtest</yt:channelId>
    <title>Second</title>
    <published>2025-01-15T11:00:00+00:00</published>
    <updated>2025-01-15T11:00:00+00:00</updated>
  </entry>
</feed>`,
			want: &Video{
				VideoID:   "first",
				Title:     "First",
				Link:      "https://www.youtube.com/watch?v=first",
				ChannelID: "UCtest",
				Published: "2025-01-15T10:00:00+00:00",
				Updated:   "2025-01-15T10:00:00+00:00",
			},
		},
		{
			name: "deleted entry tombstone",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:at="http://purl.org/atompub/tombstones/1.0" xmlns="http://www.w3.org/2005/Atom">
  <at:deleted-entry ref="yt:video:deleted123" when="2025-01-15T12:00:00+00:00"/>
</feed>`,
			want: &Video{Deleted: true},
		},
		{
			name:        "invalid xml",
			raw:         `not xml`,
			wantErr:     true,
			errContains: "unmarshal atom feed",
		},
		{
			name: "empty feed",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom"/>`,
			wantErr:     true,
			errContains: "no usable entry",
		},
		{
			name: "missing video id",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:channelId>UCtest</yt:channelId>
    <title>Test Video</title>
    <published>2025-01-15T10:00:00+00:00</published>
    <updated>2025-01-15T11:00:00+00:00</updated>
  </entry>
</feed>`,
			wantErr:     true,
			errContains: "missing video id",
		},
		{
			name: "missing channel id",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>test123</yt:videoId>
    <title>Test Video</title>
    <published>2025-01-15T10:00:00+00:00</published>
    <updated>2025-01-15T11:00:00+00:00</updated>
  </entry>
</feed>`,
			wantErr:     true,
			errContains: "missing channel id",
		},
		{
			name: "missing timestamps",
			raw: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>test123</yt:videoId>
    <yt:channelId>UCtest</yt:channelId>
    <title>Test Video</title>
  </entry>
</feed>`,
			wantErr:     true,
			errContains: "missing timestamps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(tt.raw))

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ErrNoEntryIsMatchable(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"/>`))
	require.ErrorIs(t, err, ErrNoEntry)
}
