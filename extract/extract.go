// Package extract parses export pages into an ordered message stream. Pages
// arrive newest-first and list their messages newest-first, so each page's
// blocks are reversed before appending; the combined stream comes out in
// true chronological order, oldest message first.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/slgero/talk-with-me/archive"
	"github.com/slgero/talk-with-me/model"
)

var ErrUnreadablePage = errors.New("page cannot be parsed as markup")

// Mode selects how much of a message block's header survives extraction.
type Mode int

const (
	// ModeStripAuthor drops the author/timestamp header line, keeping only
	// the message body. Used for the flat text corpus.
	ModeStripAuthor Mode = iota
	// ModeRetainAuthor keeps the header so the turn assembler can read the
	// author from the text before the first comma.
	ModeRetainAuthor
)

// Extract parses the given pages of one conversation folder and returns its
// messages in chronological order.
func Extract(folder string, pages []archive.Page, mode Mode) ([]model.RawMessage, error) {
	if _, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("%w: %s", archive.ErrArchiveNotFound, folder)
	}

	chunks := make([][]model.RawMessage, 0, len(pages))
	for _, page := range pages {
		messages, err := extractPage(filepath.Join(folder, page.Name), mode)
		if err != nil {
			return nil, err
		}

		// Newest-first within the page; flip to chronological.
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
		chunks = append(chunks, messages)
	}

	// Pages were visited newest-first, so older chunks go in front.
	var all []model.RawMessage
	for i := len(chunks) - 1; i >= 0; i-- {
		all = append(all, chunks[i]...)
	}
	return all, nil
}

func extractPage(path string, mode Mode) ([]model.RawMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", archive.ErrArchiveNotFound, path)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadablePage, filepath.Base(path), err)
	}

	var messages []model.RawMessage
	doc.Find("div.message").Each(func(_ int, sel *goquery.Selection) {
		block := strings.TrimSpace(sel.Text())
		messages = append(messages, fromBlock(block, mode))
	})
	return messages, nil
}

// fromBlock splits one message block into header and body. The body starts
// after the first line break; a block without one is kept whole. In
// ModeRetainAuthor the author is the header text before the first comma.
func fromBlock(block string, mode Mode) model.RawMessage {
	body := block
	if idx := strings.Index(block, "\n"); idx >= 0 {
		body = block[idx+1:]
	}

	if mode == ModeRetainAuthor {
		author := block
		if idx := strings.Index(block, ","); idx >= 0 {
			author = block[:idx]
		}
		return model.RawMessage{Author: author, Text: body}
	}
	return model.RawMessage{Text: body}
}
