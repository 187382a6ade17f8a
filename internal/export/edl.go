package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/videocraft/videocraft-core/internal/editing"
)

// EDLEvent is one retained span of the source video.
type EDLEvent struct {
	Name      string
	MediaPath string
	StartMs   int
	EndMs     int
}

// EventsFromSegments maps the retained segments of an edit onto EDL events
// that all read from the same source file.
func EventsFromSegments(filename string, segments []editing.Segment) []EDLEvent {
	events := make([]EDLEvent, 0, len(segments))
	for i, seg := range segments {
		start := int(math.Round(seg.Start * 1000))
		end := int(math.Round(seg.End * 1000))
		if end <= start {
			continue
		}
		events = append(events, EDLEvent{
			Name:      fmt.Sprintf("%s segment %d", fileStem(filename), i+1),
			MediaPath: filename,
			StartMs:   start,
			EndMs:     end,
		})
	}
	return events
}

// GenerateEDL writes a CMX3600 edit decision list. Record times are laid
// back to back so the list plays the retained segments without gaps.
func GenerateEDL(events []EDLEvent, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordMs := 0
	for i, ev := range events {
		length := ev.EndMs - ev.StartMs
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				msToTimecode(ev.StartMs, fps), msToTimecode(ev.EndMs, fps),
				msToTimecode(recordMs, fps), msToTimecode(recordMs+length, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.Name),
			fmt.Sprintf("* SOURCE FILE:  %s", ev.MediaPath),
		)
		recordMs += length
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, frames)
}
