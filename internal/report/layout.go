// Package report lays out the paginated export documents and writes them as
// PDF, and builds the canonical project-data JSON document.
package report

// Page geometry, in millimetres on A4.
const (
	MarginX       = 20.0
	TitleY        = 30.0
	SectionStartY = 90.0
	PageBreakY    = 250.0
	LineStep      = 10.0
	ListStep      = 8.0

	TitleSize   = 20.0
	HeadingSize = 14.0
	BodySize    = 10.0

	// MaxListItems caps recommendations, emotions and scenes.
	MaxListItems = 5
)

// Item is one positioned line of text.
type Item struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Page is the text placed on one page.
type Page struct {
	Items []Item `json:"items"`
}

// Document is a laid-out report ready to be written.
type Document struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Texts returns every line in reading order.
func (d Document) Texts() []string {
	var out []string
	for _, p := range d.Pages {
		for _, it := range p.Items {
			out = append(out, it.Text)
		}
	}
	return out
}

// layout places text top-down with a vertical cursor and starts a new page
// once the cursor passes a threshold.
type layout struct {
	doc Document
	y   float64
}

func newLayout(title string) *layout {
	l := &layout{doc: Document{Title: title}}
	l.doc.Pages = append(l.doc.Pages, Page{})
	l.place(TitleY, TitleSize, title)
	return l
}

func (l *layout) place(y, size float64, text string) {
	page := &l.doc.Pages[len(l.doc.Pages)-1]
	page.Items = append(page.Items, Item{Text: text, X: MarginX, Y: y, Size: size})
}

func (l *layout) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{})
	l.y = TitleY
}

func (l *layout) breakPast(threshold float64) {
	if l.y > threshold {
		l.newPage()
	}
}

// header writes the fixed information block under the title and moves the
// cursor to the first section.
func (l *layout) header(heading string, lines ...string) {
	l.place(50, HeadingSize, heading)
	y := 60.0
	for _, line := range lines {
		l.place(y, BodySize, line)
		y += LineStep
	}
	l.y = SectionStartY
}

func (l *layout) heading(text string) {
	l.breakPast(PageBreakY)
	l.place(l.y, HeadingSize, text)
	l.y += LineStep
}

func (l *layout) line(text string, step float64) {
	l.breakPast(PageBreakY)
	l.place(l.y, BodySize, text)
	l.y += step
}

func (l *layout) gap(step float64) {
	l.y += step
}

func (l *layout) document() Document {
	return l.doc
}
