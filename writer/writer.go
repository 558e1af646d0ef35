// Package writer serializes a built corpus to disk as JSON Lines: one
// record per conversation in text-generation mode, one record per
// (prompt, response) pair in dialogue mode.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/slgero/talk-with-me/corpus"
)

// Write streams the corpus to path, or to stdout when path is "-".
func Write(c *corpus.Corpus, mode corpus.Mode, path string) error {
	if path == "-" {
		return encode(c, mode, os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	w := bufio.NewWriterSize(file, 64*1024)
	if err := encode(c, mode, w); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return file.Close()
}

func encode(c *corpus.Corpus, mode corpus.Mode, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if mode == corpus.ModeTextGeneration {
		for _, conversation := range c.Conversations {
			if err := enc.Encode(conversation); err != nil {
				return fmt.Errorf("encode conversation %s: %w", conversation.ID, err)
			}
		}
		return nil
	}

	for _, pair := range c.Pairs {
		if err := enc.Encode(pair); err != nil {
			return fmt.Errorf("encode pair: %w", err)
		}
	}
	return nil
}
