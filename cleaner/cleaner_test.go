package cleaner

import "testing"

func TestClean_KeepsConversationalText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Привет, как дела?", "Привет, как дела?"},
		{"outer spaces", "   Привет, как дела?   ", "Привет, как дела?"},
		{"outer blank lines", " \n \n Привет, как дела? \n \n", "Привет, как дела?"},
		{"internal newline kept", "Привет!\n Как дела?", "Привет!\n Как дела?"},
		{"wrapped in newlines", "\nПривет!\n Как дела?\n", "Привет!\n Как дела?"},
		{"single letter", " \n \n \n f", "f"},
		{
			"photo block after text",
			"Вариант подарка\nФотография\nhttps://sun9-31.userapi.com/c205628/v205628626/19be1/bCtv1V6LIkg.jpg",
			"Вариант подарка",
		},
		{"forwarded singular", "Ок\n1 прикреплённое сообщение", "Ок"},
		{"forwarded paucal", "Ок\n2 прикреплённых сообщения", "Ок"},
		{"forwarded plural", "Ок\n25 прикреплённых сообщений", "Ок"},
		{"stacked markers", "привет\nКарта\nСтикер", "привет"},
		{"stacked markers out of table order", "привет\nСтикер\nКарта", "привет"},
		{
			"two photo blocks after text",
			"фотки \nФотография\nhttps://sun9-55.userapi.com/c836233/v836233679/58948/Yoe97VFsvp4.jpg\n\nФотография\nhttps://sun9-57.userapi.com/c836233/v836233679/58952/sxJ6MN8IIdc.jpg",
			"фотки",
		},
		{"email stripped", "Вот моя почта: user@example.com", "Вот моя почта:"},
		{"url stripped", "глянь https://vk.com/wall-1_2 потом", "глянь потом"},
		{"phone becomes space", "звони +79161234567 вечером", "звони вечером"},
		{"emoji stripped", "привет \U0001F600\U0001F44D", "привет"},
		{"audio label", "\nАудиозапись\nголос", "голос"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_DropsAttachmentOnlyMessages(t *testing.T) {
	tests := []string{
		"  ",
		" \n \n \n ",
		"\nДокумент\nhttps://vk.com/doc224156076_529351508",
		"\nФотография\nhttps://sun9-31.userapi.com/c205628/v205628626/19be1/bCtv1V6LIkg.jpg",
		"\nФотография\nhttps://sun9-55.userapi.com/c836233/v836233679/58948/Yoe97VFsvp4.jpg\n\nФотография\nhttps://sun9-57.userapi.com/c836233/v836233679/58952/sxJ6MN8IIdc.jpg",
		"\nВидеозапись\nhttps://vk.com/video-111096931_456261957",
		"\nКарта",
		"\nСтикер",
		"\nКарта\nСтикер",
		"\n1 прикреплённое сообщение",
		"\n2 прикреплённых сообщения",
		"\n25 прикреплённых сообщений",
		"зацени\nСсылка\nhttps://example.com/page",
		"https://example.com/post#comments",
	}

	for _, in := range tests {
		if got := Clean(in); got != "" {
			t.Errorf("Clean(%q) = %q, want empty", in, got)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	tests := []string{
		"Привет, как дела?",
		"Вариант подарка\nФотография\nhttps://sun9-31.userapi.com/c205628/v205628626/19be1/bCtv1V6LIkg.jpg",
		"Ок\n1 прикреплённое сообщение",
		"Вот моя почта: user@example.com",
		"звони +79161234567 вечером",
		"фотки \nФотография\nhttps://sun9-55.userapi.com/a.jpg\n\nФотография\nhttps://sun9-57.userapi.com/b.jpg",
		"\nСтикер",
		"привет\nКарта\nСтикер",
		"\nКарта\nСтикер",
		"привет \U0001F600 пока",
	}

	for _, in := range tests {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestRules_IndividualSteps(t *testing.T) {
	rules := Rules()
	byName := make(map[string]func(string) string, len(rules))
	for _, rule := range rules {
		byName[rule.Name] = rule.Apply
	}

	if got := byName["veto"]("смотри\nСсылка\nhttps://example.com"); got != "" {
		t.Errorf("veto kept %q", got)
	}
	if got := byName["trailing-markers"]("Ок\nСообщение удалено"); got != "Ок" {
		t.Errorf("trailing-markers = %q, want %q", got, "Ок")
	}
	if got := byName["trailing-markers"]("Карта"); got != "" {
		t.Errorf("trailing-markers on bare marker = %q, want empty", got)
	}
	if got := byName["trailing-markers"]("привет\nКарта\nСтикер"); got != "привет" {
		t.Errorf("trailing-markers on stacked markers = %q, want %q", got, "привет")
	}
	if got := byName["attachments"]("глянь\nПодарок"); got != "глянь" {
		t.Errorf("attachments = %q, want %q", got, "глянь")
	}
	if got := byName["scrub"]("а  б"); got != "а  б" {
		t.Errorf("scrub must not touch whitespace, got %q", got)
	}
	if got := byName["whitespace"]("  а   б  "); got != "а б" {
		t.Errorf("whitespace = %q, want %q", got, "а б")
	}
}
