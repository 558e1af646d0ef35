// Package cleaner strips non-conversational content from exported message
// bodies: attachment blocks, forwarded-message counters, URLs, emoji,
// contact details. The cascade is an ordered table of pure string rewrites;
// an empty result means the whole message should be dropped.
package cleaner

import (
	"regexp"
	"strings"
)

// Attachment labels as they appear in export pages, each optionally
// followed by the attachment's URL on the next line.
var attachmentLabels = []string{
	"Фотография",
	"Документ",
	"Видеозапись",
	"Аудиозапись",
	"Видео",
	"История",
	"Запись на стене",
	"Подарок",
	"Ссылка",
}

// Boilerplate suffixes the exporter appends as a final line.
var trailingMarkers = []string{
	"прикреплённое сообщение",
	"прикреплённых сообщений",
	"прикреплённых сообщения",
	"Запись на стене",
	"Сообщение удалено",
	"Карта",
	"Стикер",
}

const urlPattern = `(?:https?://|www\.)[^\s]+`

var (
	urlRe   = regexp.MustCompile(urlPattern)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+`)
	phoneRe = regexp.MustCompile(`(?:\+7|8)[ (]?\d{3}[ )]?[ -]?\d{3}[ -]?\d{2}[ -]?\d{2}|\+\d{10,15}`)
	emojiRe = regexp.MustCompile(`[\x{200D}\x{20E3}\x{2328}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}\x{1F000}-\x{1FAFF}]+`)
	audioRe = regexp.MustCompile(`\n?Аудиозапись\n?`)
	// Single pass over runs of spaces; newlines are left alone so the flat
	// corpus keeps its line structure.
	spaceRunRe = regexp.MustCompile(`  +`)
)

// AttachmentLabels returns the label table, for tooling that reports on
// archive contents.
func AttachmentLabels() []string {
	labels := make([]string, len(attachmentLabels))
	copy(labels, attachmentLabels)
	return labels
}

type attachmentRule struct {
	block    *regexp.Regexp // [\n]?label[\n]?<url>, anywhere in the message
	trailing *regexp.Regexp // bare [\n]?label[\n]? at end of message
}

var attachmentRules = compileAttachmentRules()

func compileAttachmentRules() []attachmentRule {
	rules := make([]attachmentRule, 0, len(attachmentLabels))
	for _, label := range attachmentLabels {
		quoted := regexp.QuoteMeta(label)
		rules = append(rules, attachmentRule{
			block:    regexp.MustCompile(`\n?` + quoted + `\n?` + urlPattern),
			trailing: regexp.MustCompile(`\n?` + quoted + `\n?$`),
		})
	}
	return rules
}

// Rule is one step of the cascade. Rules run in table order and each must
// be idempotent; returning "" discards the message.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules returns the cascade in application order. The order is load
// bearing: later rules assume earlier ones already removed the structural
// markers they key on.
func Rules() []Rule {
	return []Rule{
		{Name: "veto", Apply: vetoAttachmentOnly},
		{Name: "trailing-markers", Apply: trimTrailingMarkers},
		{Name: "attachments", Apply: stripAttachments},
		{Name: "scrub", Apply: scrub},
		{Name: "whitespace", Apply: normalizeWhitespace},
	}
}

// Clean runs the full cascade over one message body. An empty result
// signals that the message carried no human content.
func Clean(message string) string {
	for _, rule := range Rules() {
		message = rule.Apply(message)
		if message == "" {
			return ""
		}
	}
	return message
}

// vetoAttachmentOnly discards link-attachment messages and comment-anchor
// fragments outright: they never contain human text.
func vetoAttachmentOnly(message string) string {
	if strings.Contains(message, "\nСсылка\nhttps:") || strings.Contains(message, "#comments") {
		return ""
	}
	return message
}

// trimTrailingMarkers cuts the final line while it is exporter boilerplate
// (forwarded-message counters, sticker and map placeholders, ...). Markers
// can stack, so the scan restarts after each trim until none matches.
func trimTrailingMarkers(message string) string {
	for trimmed := true; trimmed; {
		trimmed = false
		for _, marker := range trailingMarkers {
			if !strings.HasSuffix(message, marker) {
				continue
			}
			if idx := strings.LastIndex(message, "\n"); idx >= 0 {
				message = message[:idx]
			} else {
				// The whole message is the marker line.
				message = ""
			}
			trimmed = true
			break
		}
	}
	return message
}

// stripAttachments removes label+URL blocks anywhere in the message and a
// bare trailing label at the end.
func stripAttachments(message string) string {
	for _, rule := range attachmentRules {
		message = rule.block.ReplaceAllString(message, "")
		message = rule.trailing.ReplaceAllString(message, "")
	}
	return message
}

// scrub removes emoji, emails, phone numbers, generic URLs and the bare
// audio-recording label. Phone numbers become a single space so the words
// around them do not glue together.
func scrub(message string) string {
	message = emojiRe.ReplaceAllString(message, "")
	message = emailRe.ReplaceAllString(message, "")
	message = phoneRe.ReplaceAllString(message, " ")
	message = urlRe.ReplaceAllString(message, "")
	message = audioRe.ReplaceAllString(message, "")
	return message
}

func normalizeWhitespace(message string) string {
	message = spaceRunRe.ReplaceAllString(message, " ")
	return strings.TrimSpace(message)
}
