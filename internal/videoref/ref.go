// Package videoref models how the session refers to its video and maps that
// reference to the durable filename every backend call needs.
//
// A Ref is produced once, where the video is loaded, so nothing downstream has
// to guess at the shape of a reference.
package videoref

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Placeholder is returned by Resolve when no durable file backs the reference.
// Exports treat it as "nothing on the server to export".
const Placeholder = "demo-video.mp4"

// Kind tags the variant a Ref holds.
type Kind int

const (
	KindNone Kind = iota
	KindFilename
	KindLocalHandle
	KindRemoteURL
)

func (k Kind) String() string {
	switch k {
	case KindFilename:
		return "filename"
	case KindLocalHandle:
		return "local_handle"
	case KindRemoteURL:
		return "remote_url"
	default:
		return "none"
	}
}

// Names are filename-bearing fields captured with a handle or URL. Resolve
// consults them in declaration order.
type Names struct {
	Filename         string `json:"filename,omitempty"`
	Name             string `json:"name,omitempty"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	VideoName        string `json:"videoName,omitempty"`
}

// UnmarshalJSON also accepts original_filename and video_name. The camelCase
// spelling wins when both are present.
func (n *Names) UnmarshalJSON(data []byte) error {
	var raw struct {
		Filename              string `json:"filename"`
		Name                  string `json:"name"`
		OriginalFilename      string `json:"originalFilename"`
		OriginalFilenameSnake string `json:"original_filename"`
		VideoName             string `json:"videoName"`
		VideoNameSnake        string `json:"video_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Names{
		Filename:         raw.Filename,
		Name:             raw.Name,
		OriginalFilename: firstNonEmpty(raw.OriginalFilename, raw.OriginalFilenameSnake),
		VideoName:        firstNonEmpty(raw.VideoName, raw.VideoNameSnake),
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (n Names) first() string {
	for _, v := range []string{n.Filename, n.Name, n.OriginalFilename, n.VideoName} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Ref is one of: a server filename, an ephemeral local handle used only for
// preview, or a remote URL.
type Ref struct {
	kind  Kind
	value string
	names Names
}

// Filename refers to a file the backend already stores.
func Filename(name string) Ref {
	return Ref{kind: KindFilename, value: strings.TrimSpace(name)}
}

// LocalHandle refers to in-process media with no server counterpart.
func LocalHandle(handle string, names Names) Ref {
	return Ref{kind: KindLocalHandle, value: handle, names: names}
}

// RemoteURL refers to media reachable over HTTP.
func RemoteURL(u string, names Names) Ref {
	return Ref{kind: KindRemoteURL, value: strings.TrimSpace(u), names: names}
}

// Parse classifies a raw reference string: blob: and object handles are local,
// absolute http(s) URLs and rooted paths are remote, anything else is taken
// as a filename.
func Parse(raw string, names Names) Ref {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		if names.first() != "" {
			return LocalHandle("", names)
		}
		return Ref{}
	case IsEphemeral(raw):
		return LocalHandle(raw, names)
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "/"):
		return RemoteURL(raw, names)
	default:
		return Filename(raw)
	}
}

// Kind reports which variant r holds.
func (r Ref) Kind() Kind { return r.kind }

// Value is the raw filename, handle or URL.
func (r Ref) Value() string { return r.value }

// Names returns the captured filename-bearing fields.
func (r Ref) Names() Names { return r.names }

// IsZero reports whether r carries no reference at all.
func (r Ref) IsZero() bool { return r.kind == KindNone }

// IsEphemeral reports whether s is an in-process handle such as a blob: URL.
func IsEphemeral(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "blob:") || strings.HasPrefix(s, "mediasource:")
}

// IsPlaceholder reports whether name is the "no backing file" placeholder.
func IsPlaceholder(name string) bool {
	return name == Placeholder
}

// Resolve maps r to a filename. It never fails: references that cannot be
// mapped resolve to Placeholder.
func Resolve(r Ref) string {
	if r.kind == KindFilename && r.value != "" && !IsEphemeral(r.value) {
		return r.value
	}

	if name := r.names.first(); name != "" {
		return name
	}

	if r.kind == KindRemoteURL && !IsEphemeral(r.value) {
		if name := lastSegment(r.value); name != "" {
			return name
		}
	}

	return Placeholder
}

func lastSegment(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}
