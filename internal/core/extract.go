package core

import (
	"fmt"
	"strconv"
)

// Field extraction over raw email documents. Upstream fetchers have written
// several schema variants over time, so every field is resolved through an
// ordered alias list. Extraction never fails: anything missing becomes "".

func safeString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		// JSON numbers arrive as float64; epoch timestamps must not turn
		// into exponent notation.
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool, int, int32, int64, float32:
		return fmt.Sprint(x)
	default:
		return ""
	}
}

func stringField(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := safeString(doc[k]); s != "" {
			return s
		}
	}
	return ""
}

func intField(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	default:
		return 0
	}
}

// DecodeMessage maps a raw email document onto a MessageRecord using the
// known alias lists:
//
//	id     <- id | email_id | message_id
//	thread <- threadId | thread_id
//	from   <- from | from_email | sender
//	date   <- date | internalDate | received_at
//	body   <- body_text | body | text
//	labels <- labelIds | labels
func DecodeMessage(doc map[string]any) *MessageRecord {
	return &MessageRecord{
		ID:          stringField(doc, "id", "email_id", "message_id"),
		ThreadID:    stringField(doc, "threadId", "thread_id"),
		LabelIDs:    stringListField(doc, "labelIds", "labels"),
		Subject:     stringField(doc, "subject"),
		From:        stringField(doc, "from", "from_email", "sender"),
		Date:        stringField(doc, "date", "internalDate", "received_at"),
		Snippet:     stringField(doc, "snippet"),
		BodyText:    stringField(doc, "body_text", "body", "text"),
		Attachments: decodeAttachments(doc["attachments"]),
	}
}

// stringListField resolves the first alias holding a non-empty list,
// dropping entries that are not strings.
func stringListField(doc map[string]any, keys ...string) []string {
	for _, k := range keys {
		list, ok := doc[k].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, entry := range list {
			if s := safeString(entry); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// decodeAttachments normalizes the attachments list, tolerating entries that
// are bare strings instead of objects.
func decodeAttachments(v any) []Attachment {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Attachment, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			out = append(out, Attachment{Filename: safeString(entry)})
			continue
		}
		out = append(out, Attachment{
			Filename: stringField(m, "filename", "name"),
			MIMEType: stringField(m, "mimeType", "mime_type"),
			SavedTo:  stringField(m, "saved_to", "path", "filepath", "file_path"),
			Size:     intField(m["size"]),
			Error:    safeString(m["error"]),
		})
	}
	return out
}
