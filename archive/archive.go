// Package archive navigates a VK message export: it decides which folders
// hold real one-on-one conversations and in which order their pages must be
// read.
package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrArchiveNotFound  = errors.New("archive path does not exist")
	ErrMalformedArchive = errors.New("page filename carries no page number")
)

// Export pages are named like messages0.html, messages300.html, ...
var pageNumberPattern = regexp.MustCompile(`(\d+)\.html$`)

// Page is one exported batch of messages inside a conversation folder.
// Higher numbers hold more recent messages.
type Page struct {
	Name   string
	Number int
}

// ListConversations returns the ids of folders that look like one-on-one
// conversations, sorted ascending so repeated runs walk the archive in the
// same order. A missing root is logged and yields an empty list.
func ListConversations(root string, logger *slog.Logger) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		if logger != nil {
			logger.Warn("no such directory", "path", root)
		}
		return nil
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "-") { // groups and applications
			continue
		}
		if len(name) < 7 { // service letters
			continue
		}
		if len(name) == 10 { // group chats
			continue
		}
		folders = append(folders, name)
	}

	sort.Strings(folders)
	return folders
}

// ListPages returns the conversation's pages sorted by page number
// descending, so extraction starts from the most recent batch. A folder
// with fewer than minPages pages is considered too short to be a real
// conversation and yields an empty list.
func ListPages(folder string, minPages int) ([]Page, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, folder)
	}

	var pages []Page
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html") {
			continue
		}
		match := pageNumberPattern.FindStringSubmatch(name)
		if match == nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedArchive, name)
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedArchive, name)
		}
		pages = append(pages, Page{Name: name, Number: number})
	}

	if len(pages) < minPages { // short dialogs
		return nil, nil
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Number > pages[j].Number
	})
	return pages, nil
}
