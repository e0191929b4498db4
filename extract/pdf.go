package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mycok/coursesearch/content"
)

var assetRefRegex = regexp.MustCompile(`/asset/(.*?)\.pdf`)

// AssetName returns the file name of the PDF asset referenced by data.
func AssetName(data string) (string, bool) {
	m := assetRefRegex.FindStringSubmatch(data)
	if len(m) != 2 || m[1] == "" {
		return "", false
	}

	return m[1] + ".pdf", true
}

type documentHandler struct {
	store    content.Store
	renderer PageRenderer
}

func (h *documentHandler) Text(ctx context.Context, item *content.Item) Result {
	asset, err := h.asset(ctx, item)
	if err != nil {
		return Result{Reason: err}
	}

	text, err := pdfText(asset.Data)
	if err != nil {
		return Result{Reason: fmt.Errorf("%w: %s: %v", ErrMalformedPDF, asset.Name, err)}
	}

	return Result{Value: text}
}

func (h *documentHandler) Thumbnail(ctx context.Context, item *content.Item) Result {
	asset, err := h.asset(ctx, item)
	if err != nil {
		return Result{Reason: err}
	}

	img, err := h.renderer.RenderFirstPage(ctx, asset.Data)
	if err != nil {
		return Result{Reason: fmt.Errorf("%w: %s: %v", ErrThumbnailRender, asset.Name, err)}
	}

	return Result{Value: base64.StdEncoding.EncodeToString(img)}
}

func (h *documentHandler) asset(ctx context.Context, item *content.Item) (*content.Asset, error) {
	name, ok := AssetName(item.Data)
	if !ok {
		return nil, ErrAssetNotFound
	}

	asset, err := h.store.FindAsset(ctx, name)
	if errors.Is(err, content.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("find asset %s: %w", name, err)
	}

	return asset, nil
}

// pdfText returns the plain text of a PDF restricted to printable ASCII,
// with line breaks turned into spaces.
func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}

	return printableASCII(raw), nil
}

func printableASCII(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))

	for _, b := range raw {
		switch {
		case b == '\n':
			sb.WriteByte(' ')
		case b >= 0x20 && b < 0x7f:
			sb.WriteByte(b)
		}
	}

	return sb.String()
}
