package extract

import (
	"regexp"
	"strings"
)

var youtubeAttrRegex = regexp.MustCompile(`youtube=\\?"([^"\\]*)\\?"`)

// normalSpeed marks the key of the identifier played at normal speed.
const normalSpeed = "1.0"

// MediaID returns the identifier of the normal speed variant of a video.
// data is either a bare "speed:id,speed:id" list or video markup carrying
// that list in its youtube attribute. A list with a single entry belongs to
// a placeholder video and yields no identifier.
func MediaID(data string) (string, bool) {
	if m := youtubeAttrRegex.FindStringSubmatch(data); len(m) == 2 {
		data = m[1]
	}

	entries := strings.Split(data, ",")
	if len(entries) == 1 {
		return "", false
	}

	for _, entry := range entries {
		// Entries without a colon map to an empty identifier.
		parts := strings.SplitN(entry+":", ":", 3)
		if !strings.Contains(parts[0], normalSpeed) {
			continue
		}

		if id := strings.TrimSpace(parts[1]); id != "" {
			return id, true
		}
	}

	return "", false
}
