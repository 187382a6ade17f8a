package export

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

func exportedVideoName(filename string) string {
	return "exported_" + filename
}

func uneditedVideoName(filename string) string {
	return "unedited_" + filename
}

func projectReportName(filename string, at time.Time) string {
	return fmt.Sprintf("project_report_%s_%s.pdf", fileStem(filename), at.UTC().Format(isoDate))
}

func analysisReportName(filename string, at time.Time) string {
	return fmt.Sprintf("analysis_report_%s_%s.pdf", fileStem(filename), at.UTC().Format(isoDate))
}

func dataDocumentName(at time.Time) string {
	return fmt.Sprintf("project_data_%s.json", at.UTC().Format(isoDate))
}

func edlName(filename string, at time.Time) string {
	return fmt.Sprintf("edit_list_%s_%s.edl", fileStem(filename), at.UTC().Format(isoDate))
}

// fileStem drops the directory and extension: "media/clip.mp4" is "clip".
func fileStem(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
