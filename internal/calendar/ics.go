// Package calendar exports admin task deadlines as iCalendar.
package calendar

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/model"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	prodID      = "-//moveready//admin tasks//EN"
	maxLine     = 75
)

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://moveready.app/tasks"))

// Event is one all-day VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Date        time.Time
}

// TaskUID is stable for a task id so re-imported calendars update events
// instead of duplicating them.
func TaskUID(taskID string) string {
	return uuid.NewSHA1(uidNamespace, []byte(taskID)).String() + "@moveready"
}

// Events returns one event per task with a deadline, in display order.
func Events(tasks []model.AdminTask, movingDate string, now time.Time) []Event {
	var out []Event
	for _, t := range calc.ClassifyTasks(tasks, movingDate, now) {
		if t.Deadline == nil {
			continue
		}
		out = append(out, Event{
			UID:         TaskUID(t.ID),
			Summary:     "Move: " + t.Label,
			Description: fmt.Sprintf("Deadline for: %s. Don't forget to tick it off in moveready!", t.Label),
			Date:        *t.Deadline,
		})
	}
	return out
}

// Write encodes events as a VCALENDAR with CRLF line endings.
func Write(w io.Writer, events []Event, now time.Time) error {
	bw := bufio.NewWriter(w)
	stamp := now.UTC().Format("20060102T150405Z")

	line(bw, "BEGIN:VCALENDAR")
	line(bw, "VERSION:2.0")
	line(bw, "PRODID:"+prodID)
	line(bw, "CALSCALE:GREGORIAN")
	for _, e := range events {
		line(bw, "BEGIN:VEVENT")
		line(bw, "UID:"+e.UID)
		line(bw, "DTSTAMP:"+stamp)
		line(bw, "DTSTART;VALUE=DATE:"+e.Date.Format("20060102"))
		line(bw, "SUMMARY:"+escape(e.Summary))
		line(bw, "DESCRIPTION:"+escape(e.Description))
		line(bw, "END:VEVENT")
	}
	line(bw, "END:VCALENDAR")
	return bw.Flush()
}

// Export renders the calendar of a document's admin tasks.
func Export(doc model.Document, now time.Time) []byte {
	var buf bytes.Buffer
	Write(&buf, Events(doc.AdminTasks, doc.MovingDate, now), now)
	return buf.Bytes()
}

var escaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escape(s string) string {
	return escaper.Replace(s)
}

// line writes one content line folded at 75 octets without splitting a
// UTF-8 sequence.
func line(w *bufio.Writer, s string) {
	limit := maxLine
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8Start(s[cut]) {
			cut--
		}
		w.WriteString(s[:cut])
		w.WriteString("\r\n ")
		s = s[cut:]
		// continuation lines start with a space
		limit = maxLine - 1
	}
	w.WriteString(s)
	w.WriteString("\r\n")
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
