package mailbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainMessage = "Message-Id: <abc123@mail.example.com>\r\n" +
	"From: User <user@example.com>\r\n" +
	"Date: Mon, 02 Mar 2026 10:00:00 +0000\r\n" +
	"Subject: App crashes on send\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"It crashes every time I hit send.\r\n"

const multipartMessage = "Message-Id: <def456@mail.example.com>\r\n" +
	"From: user@example.com\r\n" +
	"Subject: crash with log\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=BOUNDARY\r\n" +
	"\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"See attached log.\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain\r\n" +
	"Content-Disposition: attachment; filename=\"app.log\"\r\n" +
	"\r\n" +
	"panic: nil pointer\r\n" +
	"--BOUNDARY--\r\n"

const htmlOnlyMessage = "Message-Id: <ghi789@mail.example.com>\r\n" +
	"From: user@example.com\r\n" +
	"Subject: html only\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><head><style>p{color:red}</style></head>" +
	"<body><p>Cannot &amp; will not load</p><script>alert(1)</script></body></html>\r\n"

func TestParseMessagePlainText(t *testing.T) {
	rec, err := ParseMessage(strings.NewReader(plainMessage), "", "k1")
	require.NoError(t, err)

	assert.Equal(t, "abc123@mail.example.com", rec.ID)
	assert.Equal(t, "App crashes on send", rec.Subject)
	assert.Contains(t, rec.From, "user@example.com")
	assert.Equal(t, "Mon, 02 Mar 2026 10:00:00 +0000", rec.Date)
	assert.Contains(t, rec.BodyText, "It crashes every time")
	assert.Equal(t, "It crashes every time I hit send.", rec.Snippet)
	assert.Empty(t, rec.Attachments)
}

func TestParseMessageSavesAttachments(t *testing.T) {
	dir := t.TempDir()
	rec, err := ParseMessage(strings.NewReader(multipartMessage), dir, "k2")
	require.NoError(t, err)

	assert.Contains(t, rec.BodyText, "See attached log.")
	require.Len(t, rec.Attachments, 1)
	att := rec.Attachments[0]
	assert.Equal(t, "app.log", att.Filename)
	assert.Equal(t, "text/plain", att.MIMEType)
	assert.Empty(t, att.Error)
	assert.Equal(t, filepath.Join(dir, "k2", "app.log"), att.SavedTo)

	content, err := os.ReadFile(att.SavedTo)
	require.NoError(t, err)
	assert.Contains(t, string(content), "panic: nil pointer")
	assert.Equal(t, int64(len(content)), att.Size)
}

func TestParseMessageAttachmentMetadataOnly(t *testing.T) {
	rec, err := ParseMessage(strings.NewReader(multipartMessage), "", "k3")
	require.NoError(t, err)

	require.Len(t, rec.Attachments, 1)
	att := rec.Attachments[0]
	assert.Empty(t, att.SavedTo)
	assert.Positive(t, att.Size)
}

func TestParseMessageHTMLFallback(t *testing.T) {
	rec, err := ParseMessage(strings.NewReader(htmlOnlyMessage), "", "k4")
	require.NoError(t, err)

	assert.Contains(t, rec.BodyText, "Cannot & will not load")
	assert.NotContains(t, rec.BodyText, "<p>")
	assert.NotContains(t, rec.BodyText, "alert(1)")
	assert.NotContains(t, rec.BodyText, "color:red")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, strings.Fields(stripHTML("<div>a</div><span>b</span>")))
	assert.Equal(t, "", stripHTML("<style>x{}</style>"))
	assert.Equal(t, "1 < 2", stripHTML("1 &lt; 2"))
}
