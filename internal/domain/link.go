package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubeIDRegex = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ExtractYouTubeID pulls the 11-character video id out of a YouTube link.
// Recognized shapes: youtube.com/watch?v=ID, youtu.be/ID, youtube.com/embed/ID,
// youtube.com/shorts/ID and youtube.com/live/ID, with or without www/m
// prefixes. Returns false for anything that is not a YouTube video URL.
func ExtractYouTubeID(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = firstPathSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id = firstPathSegment("/" + rest)
				break
			}
		}
	default:
		return "", false
	}

	if !youtubeIDRegex.MatchString(id) {
		return "", false
	}
	return id, true
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
