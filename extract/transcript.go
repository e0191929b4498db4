package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mycok/coursesearch/content"
)

// Thumbnails used for videos whose media identifier cannot be used.
const (
	youkuThumbnail   = "https://lh6.ggpht.com/8_h5j6hiFXdSl5atSJDf8bJBy85b3IlzNWeRzOqRurfNVI_oiEG-dB3C0vHRclOG8A=w170"
	defaultThumbnail = "http://img.youtube.com/vi/Tt9g2se1LcM/4.jpg"
	youtubeThumbnail = "http://img.youtube.com/vi/%s/0.jpg"
)

// Videos hosted by this player need an API key to fetch thumbnails.
const youkuPlayer = "player.youku.com"

// Marker left in chunk metadata by archives created on macOS.
const quarantineMarker = "com.apple.quar"

type transcriptPayload struct {
	Text []string `json:"text"`
}

type transcriptHandler struct {
	store content.Store
}

func (h *transcriptHandler) Text(ctx context.Context, item *content.Item) Result {
	id, ok := MediaID(item.Data)
	if !ok {
		return Result{Reason: ErrNoMediaID}
	}

	chunk, err := h.store.FindChunk(ctx, id)
	if errors.Is(err, content.ErrNotFound) {
		return Result{Reason: fmt.Errorf("%w: media id %s", ErrTranscriptNotFound, id)}
	} else if err != nil {
		return Result{Reason: fmt.Errorf("find transcript chunk: %w", err)}
	}

	payload := strings.ToValidUTF8(string(chunk.Data), "")
	if strings.Contains(payload, quarantineMarker) {
		return Result{Reason: ErrQuarantined}
	}

	var decoded transcriptPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		// The raw payload is still searchable.
		return Result{
			Value:  payload,
			Reason: fmt.Errorf("%w: media id %s: %v", ErrInvalidTranscript, id, err),
		}
	}

	fragments := make([]string, 0, len(decoded.Text))
	for _, f := range decoded.Text {
		if f != "" {
			fragments = append(fragments, f)
		}
	}

	return Result{Value: strings.Join(fragments, " ")}
}

func (h *transcriptHandler) Thumbnail(_ context.Context, item *content.Item) Result {
	if strings.Contains(item.Data, youkuPlayer) {
		return Result{Value: youkuThumbnail}
	}

	id, ok := MediaID(item.Data)
	if !ok {
		return Result{Value: defaultThumbnail}
	}

	return Result{Value: fmt.Sprintf(youtubeThumbnail, id)}
}
