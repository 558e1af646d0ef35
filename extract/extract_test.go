package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/slgero/talk-with-me/archive"
)

func writePage(t *testing.T, folder, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(folder, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtract_ChronologicalReconstruction(t *testing.T) {
	folder := t.TempDir()

	// Each page lists its messages newest-first, and page 2 is the newer
	// batch. The stream must come out as A, B, C, D.
	writePage(t, folder, "messages2.html", `<html><body>
<div class="message">Имя, 1 фев 2020 в 10:03
D</div>
<div class="message">Имя, 1 фев 2020 в 10:02
C</div>
</body></html>`)
	writePage(t, folder, "messages1.html", `<html><body>
<div class="message">Имя, 1 фев 2020 в 10:01
B</div>
<div class="message">Имя, 1 фев 2020 в 10:00
A</div>
</body></html>`)

	pages := []archive.Page{
		{Name: "messages2.html", Number: 2},
		{Name: "messages1.html", Number: 1},
	}

	got, err := Extract(folder, pages, ModeStripAuthor)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"A", "B", "C", "D"}
	if len(got) != len(want) {
		t.Fatalf("Extract() returned %d messages, want %d", len(got), len(want))
	}
	for i, text := range want {
		if got[i].Text != text {
			t.Errorf("messages[%d].Text = %q, want %q", i, got[i].Text, text)
		}
	}
}

func TestExtract_RetainAuthor(t *testing.T) {
	folder := t.TempDir()
	writePage(t, folder, "messages0.html", `<html><body>
<div class="message">Олег Петров, 1 фев 2020 в 10:00
привет</div>
</body></html>`)

	pages := []archive.Page{{Name: "messages0.html", Number: 0}}

	got, err := Extract(folder, pages, ModeRetainAuthor)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d messages, want 1", len(got))
	}
	if got[0].Author != "Олег Петров" {
		t.Errorf("Author = %q, want %q", got[0].Author, "Олег Петров")
	}
	if got[0].Text != "привет" {
		t.Errorf("Text = %q, want %q", got[0].Text, "привет")
	}
}

func TestExtract_StripAuthor(t *testing.T) {
	folder := t.TempDir()
	writePage(t, folder, "messages0.html", `<html><body>
<div class="message">Олег Петров, 1 фев 2020 в 10:00
привет
как дела</div>
</body></html>`)

	pages := []archive.Page{{Name: "messages0.html", Number: 0}}

	got, err := Extract(folder, pages, ModeStripAuthor)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d messages, want 1", len(got))
	}
	if got[0].Author != "" {
		t.Errorf("Author = %q, want empty", got[0].Author)
	}
	if got[0].Text != "привет\nкак дела" {
		t.Errorf("Text = %q, want %q", got[0].Text, "привет\nкак дела")
	}
}

func TestExtract_BlockWithoutHeaderLine(t *testing.T) {
	folder := t.TempDir()
	writePage(t, folder, "messages0.html", `<html><body>
<div class="message">однострочный блок</div>
</body></html>`)

	pages := []archive.Page{{Name: "messages0.html", Number: 0}}

	got, err := Extract(folder, pages, ModeStripAuthor)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// No line break means no header to strip; the block is kept whole.
	if len(got) != 1 || got[0].Text != "однострочный блок" {
		t.Errorf("Extract() = %v, want the full block text", got)
	}
}

func TestExtract_MissingFolder(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope"), nil, ModeStripAuthor)
	if !errors.Is(err, archive.ErrArchiveNotFound) {
		t.Errorf("Extract() error = %v, want ErrArchiveNotFound", err)
	}
}

func TestExtract_MissingPage(t *testing.T) {
	folder := t.TempDir()
	pages := []archive.Page{{Name: "messages0.html", Number: 0}}

	_, err := Extract(folder, pages, ModeStripAuthor)
	if !errors.Is(err, archive.ErrArchiveNotFound) {
		t.Errorf("Extract() error = %v, want ErrArchiveNotFound", err)
	}
}
