package mailbox

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/supportops/feedback-triage/internal/core"
)

const snippetLength = 200

var (
	scriptStylePattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
)

// stripHTML is the fallback for messages with no text/plain part: drop
// script/style blocks, then tags, then unescape entities.
func stripHTML(s string) string {
	s = scriptStylePattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(html.UnescapeString(s))
}

// ParseMessage reads one RFC 5322 message and builds a MessageRecord. When
// attachmentsDir is non-empty, attachment content is written under
// <attachmentsDir>/<key>/ and recorded in saved_to; per-attachment failures
// land in the attachment's error field instead of failing the message.
func ParseMessage(r io.Reader, attachmentsDir, key string) (*core.MessageRecord, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening message reader: %w", err)
	}

	subject, _ := mr.Header.Subject()
	rec := &core.MessageRecord{
		ID:      strings.Trim(mr.Header.Get("Message-Id"), "<> "),
		Subject: subject,
		From:    mr.Header.Get("From"),
		Date:    mr.Header.Get("Date"),
	}

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate a malformed trailing part; keep what we have.
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			content, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch {
			case contentType == "text/plain" && textBody == "":
				textBody = string(content)
			case contentType == "text/html" && htmlBody == "":
				htmlBody = string(content)
			}
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			att := core.Attachment{Filename: filename, MIMEType: contentType}

			if attachmentsDir != "" && filename != "" {
				dir := filepath.Join(attachmentsDir, key)
				path := filepath.Join(dir, filepath.Base(filename))
				if err := saveAttachment(path, part.Body); err != nil {
					att.Error = err.Error()
				} else {
					att.SavedTo = path
					if info, err := os.Stat(path); err == nil {
						att.Size = info.Size()
					}
				}
			} else {
				n, _ := io.Copy(io.Discard, part.Body)
				att.Size = n
			}
			rec.Attachments = append(rec.Attachments, att)
		}
	}

	body := textBody
	if body == "" {
		body = stripHTML(htmlBody)
	}
	rec.BodyText = body
	rec.Snippet = core.Snippet(body, snippetLength)
	return rec, nil
}

func saveAttachment(path string, content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, content)
	return err
}
